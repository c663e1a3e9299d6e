package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/ayush/company-research/backend/internal/models"
)

const (
	// Collection is the single collection holding research records.
	Collection = "researches"
	// MaxList caps how many summaries List returns.
	MaxList = 50
)

// ValidID reports whether id is a well-formed ObjectID hex string.
func ValidID(id string) bool {
	return primitive.IsValidObjectID(id)
}

// ClientOptions returns the options the research store expects its client to
// be built with: nested payload documents decode as bson.M, and server
// selection gives up after 5s so a down database fails fast.
func ClientOptions(uri string) *options.ClientOptions {
	return options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(5 * time.Second).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})
}

// MongoStore handles research record persistence in MongoDB.
type MongoStore struct {
	client      *mongo.Client
	col         *mongo.Collection
	pingTimeout time.Duration
	now         func() time.Time
}

func NewMongoStore(client *mongo.Client, db string, pingTimeout time.Duration) *MongoStore {
	return &MongoStore{
		client:      client,
		col:         client.Database(db).Collection(Collection),
		pingTimeout: pingTimeout,
		now:         time.Now,
	}
}

// EnsureIndexes creates the companyName and createdAt indexes.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "companyName", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("mongo indexes: %w", err)
	}
	return nil
}

// Connected pings the primary with a short timeout. The answer is advisory:
// a write may still fail right after a successful ping.
func (s *MongoStore) Connected(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, s.pingTimeout)
	defer cancel()
	return s.client.Ping(ctx, readpref.Primary()) == nil
}

func (s *MongoStore) Create(ctx context.Context, companyName string, data bson.M) (*models.Record, error) {
	if strings.TrimSpace(companyName) == "" || data == nil {
		return nil, ErrValidation
	}

	rec := &models.Record{
		CompanyName: companyName,
		Data:        data,
		// BSON dates carry millisecond precision.
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
	}
	res, err := s.col.InsertOne(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("mongo insert: %w", err)
	}
	rec.ID = res.InsertedID.(primitive.ObjectID)
	return rec, nil
}

func (s *MongoStore) GetByID(ctx context.Context, id string) (*models.Record, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	var rec models.Record
	if err := s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("mongo find: %w", err)
	}
	return &rec, nil
}

// List returns up to limit summaries, newest first. A limit outside
// (0, MaxList] is treated as MaxList.
func (s *MongoStore) List(ctx context.Context, limit int) ([]models.Summary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(ClampLimit(limit))).
		SetProjection(bson.D{{Key: "_id", Value: 1}, {Key: "companyName", Value: 1}, {Key: "createdAt", Value: 1}})
	cur, err := s.col.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo list: %w", err)
	}
	defer cur.Close(ctx)

	summaries := []models.Summary{}
	if err := cur.All(ctx, &summaries); err != nil {
		return nil, fmt.Errorf("mongo list: %w", err)
	}
	return summaries, nil
}

// ClampLimit maps a requested list size onto (0, MaxList].
func ClampLimit(limit int) int {
	if limit <= 0 || limit > MaxList {
		return MaxList
	}
	return limit
}
