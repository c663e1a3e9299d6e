package store

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBucketServer answers the handful of S3 calls the plan archive makes.
type fakeBucketServer struct {
	mu          sync.Mutex
	bucketFound bool
	putStatus   int
	created     bool
	objects     []string
	contentType string
}

func (f *fakeBucketServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_, _ = io.Copy(io.Discard, r.Body)
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/"), "/")
	switch {
	case r.Method == http.MethodHead && path == "account-plans":
		if !f.bucketFound {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodPut && path == "account-plans":
		f.created, f.bucketFound = true, true
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodPut && strings.HasPrefix(path, "account-plans/"):
		if f.putStatus != 0 {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(f.putStatus)
			_, _ = io.WriteString(w, `<Error><Code>AccessDenied</Code><Message>Access Denied.</Message></Error>`)
			return
		}
		f.objects = append(f.objects, strings.TrimPrefix(path, "account-plans/"))
		f.contentType = r.Header.Get("Content-Type")
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

func newTestArchive(t *testing.T, fake *fakeBucketServer) *PlanArchive {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	archive, err := NewPlanArchive(context.Background(), ArchiveConfig{
		Endpoint:  strings.TrimPrefix(srv.URL, "http://"),
		AccessKey: "minio",
		SecretKey: "minio123",
		Bucket:    "account-plans",
		Region:    "us-east-1",
	})
	require.NoError(t, err)
	return archive
}

func TestPlanArchive_UsesExistingBucket(t *testing.T) {
	fake := &fakeBucketServer{bucketFound: true}
	archive := newTestArchive(t, fake)

	key, err := archive.ArchivePlan(context.Background(), "Acme Corp", []byte(`{"account_plan":"x"}`))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(key, "plans/acme-corp/"), key)
	assert.True(t, strings.HasSuffix(key, ".json"), key)
	assert.False(t, fake.created)
	assert.Equal(t, []string{key}, fake.objects)
	assert.Equal(t, "application/json", fake.contentType)
}

func TestPlanArchive_CreatesMissingBucket(t *testing.T) {
	fake := &fakeBucketServer{}
	newTestArchive(t, fake)

	assert.True(t, fake.created)
}

func TestPlanArchive_PutFailure(t *testing.T) {
	fake := &fakeBucketServer{bucketFound: true, putStatus: http.StatusForbidden}
	archive := newTestArchive(t, fake)

	key, err := archive.ArchivePlan(context.Background(), "Acme", []byte(`{}`))
	require.Error(t, err)
	assert.Empty(t, key)
	assert.Contains(t, err.Error(), "plan archive put plans/acme/")
	assert.Empty(t, fake.objects)
}

func TestNewPlanArchive_RequiresEndpointAndBucket(t *testing.T) {
	_, err := NewPlanArchive(context.Background(), ArchiveConfig{Bucket: "account-plans"})
	assert.Error(t, err)

	_, err = NewPlanArchive(context.Background(), ArchiveConfig{Endpoint: "localhost:9000"})
	assert.Error(t, err)
}

func TestPlanKey(t *testing.T) {
	assert.Equal(t, "plans/acme-corp/abc.json", PlanKey("  Acme Corp. ", "abc"))
	assert.Equal(t, "plans/unknown/abc.json", PlanKey("!!!", "abc"))
	key := PlanKey("A very long company name that keeps going and going forever", "x")
	assert.LessOrEqual(t, len(key), len("plans/")+40+len("/x.json"))
}
