package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ayush/company-research/backend/internal/models"
)

// MemoryStore keeps research records in process memory. It backs local runs
// configured with a memory:// URI and is always connected.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[primitive.ObjectID]models.Record
	last    time.Time
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[primitive.ObjectID]models.Record),
		now:     time.Now,
	}
}

func (s *MemoryStore) Connected(context.Context) bool { return true }

func (s *MemoryStore) Create(_ context.Context, companyName string, data bson.M) (*models.Record, error) {
	if strings.TrimSpace(companyName) == "" || data == nil {
		return nil, ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// createdAt must strictly increase so list order is total.
	created := s.now().UTC().Truncate(time.Millisecond)
	if !created.After(s.last) {
		created = s.last.Add(time.Millisecond)
	}
	s.last = created

	rec := models.Record{
		ID:          primitive.NewObjectID(),
		CompanyName: companyName,
		Data:        copyDoc(data),
		CreatedAt:   created,
	}
	s.records[rec.ID] = rec

	out := rec
	out.Data = copyDoc(rec.Data)
	return &out, nil
}

func (s *MemoryStore) GetByID(_ context.Context, id string) (*models.Record, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[oid]
	if !ok {
		return nil, ErrNotFound
	}
	rec.Data = copyDoc(rec.Data)
	return &rec, nil
}

func (s *MemoryStore) List(_ context.Context, limit int) ([]models.Summary, error) {
	s.mu.RLock()
	summaries := make([]models.Summary, 0, len(s.records))
	for _, rec := range s.records {
		summaries = append(summaries, models.Summary{
			ID:          rec.ID,
			CompanyName: rec.CompanyName,
			CreatedAt:   rec.CreatedAt,
		})
	}
	s.mu.RUnlock()

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	if n := ClampLimit(limit); len(summaries) > n {
		summaries = summaries[:n]
	}
	return summaries, nil
}

// copyDoc deep-copies a payload so neither the caller's map nor a returned
// record shares nested documents or arrays with stored state.
func copyDoc(doc bson.M) bson.M {
	out := make(bson.M, len(doc))
	for k, v := range doc {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case bson.M:
		return copyDoc(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = copyValue(e)
		}
		return out
	case bson.D:
		out := make(bson.D, len(t))
		for i, e := range t {
			out[i] = bson.E{Key: e.Key, Value: copyValue(e.Value)}
		}
		return out
	case bson.A:
		out := make(bson.A, len(t))
		for i, e := range t {
			out[i] = copyValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = copyValue(e)
		}
		return out
	default:
		return v
	}
}
