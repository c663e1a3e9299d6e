package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// The checks below run before any collection access, so a zero MongoStore
// is enough to exercise them.

func TestMongoStore_CreateRejectsMissingFields(t *testing.T) {
	s := &MongoStore{}
	ctx := context.Background()

	_, err := s.Create(ctx, "", bson.M{"foo": 1})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.Create(ctx, "Acme", nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestMongoStore_GetByIDRejectsMalformedID(t *testing.T) {
	s := &MongoStore{}

	_, err := s.GetByID(context.Background(), "not-a-valid-id")
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestValidID(t *testing.T) {
	assert.True(t, ValidID("507f1f77bcf86cd799439011"))
	assert.False(t, ValidID("temp-1700000000000"))
	assert.False(t, ValidID(""))
	assert.False(t, ValidID("507f1f77bcf86cd79943901z"))
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, MaxList, ClampLimit(0))
	assert.Equal(t, MaxList, ClampLimit(-4))
	assert.Equal(t, MaxList, ClampLimit(500))
	assert.Equal(t, 10, ClampLimit(10))
}

var mockClock = time.Date(2025, 3, 1, 12, 30, 0, 123456789, time.UTC)

func newMockMongo(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().
		ClientType(mtest.Mock).
		ClientOptions(options.Client().SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})))
}

func mockStore(mt *mtest.T) *MongoStore {
	return &MongoStore{
		client:      mt.Client,
		col:         mt.Coll,
		pingTimeout: time.Second,
		now:         func() time.Time { return mockClock },
	}
}

func namespace(mt *mtest.T) string {
	return mt.Coll.Database().Name() + "." + mt.Coll.Name()
}

func TestMongoStore_Create(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("inserts record with store-assigned fields", func(mt *mtest.T) {
		s := mockStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		rec, err := s.Create(context.Background(), "Acme", bson.M{"analysis": "solid"})
		require.NoError(mt, err)
		assert.False(mt, rec.ID.IsZero())
		assert.Equal(mt, mockClock.Truncate(time.Millisecond), rec.CreatedAt)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "insert", started.CommandName)
		doc := started.Command.Lookup("documents", "0").Document()
		assert.Equal(mt, rec.ID, doc.Lookup("_id").ObjectID())
		assert.Equal(mt, "Acme", doc.Lookup("companyName").StringValue())
		assert.Equal(mt, "solid", doc.Lookup("data", "analysis").StringValue())
		assert.True(mt, rec.CreatedAt.Equal(doc.Lookup("createdAt").Time()))
	})

	mt.Run("write error is returned", func(mt *mtest.T) {
		s := mockStore(mt)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		_, err := s.Create(context.Background(), "Acme", bson.M{"n": 1})
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "mongo insert")
		assert.NotErrorIs(mt, err, ErrValidation)
	})
}

func TestMongoStore_GetByID(t *testing.T) {
	mt := newMockMongo(t)
	oid := primitive.NewObjectID()

	mt.Run("found", func(mt *mtest.T) {
		s := mockStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: oid},
			{Key: "companyName", Value: "Acme"},
			{Key: "data", Value: bson.D{{Key: "raw_data", Value: bson.D{{Key: "title", Value: "Acme Corp"}}}}},
			{Key: "createdAt", Value: primitive.NewDateTimeFromTime(mockClock)},
		}))

		rec, err := s.GetByID(context.Background(), oid.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, oid, rec.ID)
		assert.Equal(mt, "Acme", rec.CompanyName)
		assert.Equal(mt, bson.M{"raw_data": bson.M{"title": "Acme Corp"}}, rec.Data)
		assert.True(mt, mockClock.Truncate(time.Millisecond).Equal(rec.CreatedAt))

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "find", started.CommandName)
		assert.Equal(mt, oid, started.Command.Lookup("filter", "_id").ObjectID())
	})

	mt.Run("no documents is not found", func(mt *mtest.T) {
		s := mockStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))

		_, err := s.GetByID(context.Background(), oid.Hex())
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("server error is not a not-found", func(mt *mtest.T) {
		s := mockStore(mt)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    8000,
			Name:    "AtlasError",
			Message: "quota exceeded",
		}))

		_, err := s.GetByID(context.Background(), oid.Hex())
		require.Error(mt, err)
		assert.NotErrorIs(mt, err, ErrNotFound)
		assert.Contains(mt, err.Error(), "mongo find")
	})
}

func TestMongoStore_List(t *testing.T) {
	mt := newMockMongo(t)

	tests := []struct {
		name      string
		limit     int
		wantLimit int64
	}{
		{"default limit", 0, MaxList},
		{"over cap", 500, MaxList},
		{"explicit limit", 2, 2},
	}
	for _, tt := range tests {
		mt.Run(tt.name, func(mt *mtest.T) {
			s := mockStore(mt)
			newer, older := primitive.NewObjectID(), primitive.NewObjectID()
			mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
				bson.D{
					{Key: "_id", Value: newer},
					{Key: "companyName", Value: "Beta"},
					{Key: "createdAt", Value: primitive.NewDateTimeFromTime(mockClock)},
				},
				bson.D{
					{Key: "_id", Value: older},
					{Key: "companyName", Value: "Acme"},
					{Key: "createdAt", Value: primitive.NewDateTimeFromTime(mockClock.Add(-time.Hour))},
				},
			))

			list, err := s.List(context.Background(), tt.limit)
			require.NoError(mt, err)
			require.Len(mt, list, 2)
			assert.Equal(mt, newer, list[0].ID)
			assert.Equal(mt, "Beta", list[0].CompanyName)
			assert.Equal(mt, "Acme", list[1].CompanyName)
			assert.True(mt, list[0].CreatedAt.After(list[1].CreatedAt))

			started := mt.GetStartedEvent()
			require.NotNil(mt, started)
			assert.Equal(mt, "find", started.CommandName)
			cmd := started.Command
			assert.Equal(mt, tt.wantLimit, cmd.Lookup("limit").AsInt64())
			assert.Equal(mt, int64(-1), cmd.Lookup("sort", "createdAt").AsInt64())
			assert.Equal(mt, int64(-1), cmd.Lookup("sort", "_id").AsInt64())

			projection, err := cmd.Lookup("projection").Document().Elements()
			require.NoError(mt, err)
			var fields []string
			for _, e := range projection {
				fields = append(fields, e.Key())
			}
			assert.Equal(mt, []string{"_id", "companyName", "createdAt"}, fields)
		})
	}

	mt.Run("empty collection is an empty slice", func(mt *mtest.T) {
		s := mockStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))

		list, err := s.List(context.Background(), 0)
		require.NoError(mt, err)
		assert.NotNil(mt, list)
		assert.Empty(mt, list)
	})
}

func TestMongoStore_Connected(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("ping succeeds", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		assert.True(mt, mockStore(mt).Connected(context.Background()))
	})

	mt.Run("ping fails", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    13,
			Name:    "Unauthorized",
			Message: "not authorized",
		}))
		assert.False(mt, mockStore(mt).Connected(context.Background()))
	})
}

func TestMongoStore_EnsureIndexes(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("creates both indexes", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		require.NoError(mt, mockStore(mt).EnsureIndexes(context.Background()))

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "createIndexes", started.CommandName)
		assert.Equal(mt, int64(1), started.Command.Lookup("indexes", "0", "key", "companyName").AsInt64())
		assert.Equal(mt, int64(-1), started.Command.Lookup("indexes", "1", "key", "createdAt").AsInt64())
	})
}
