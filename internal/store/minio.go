package store

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ArchiveConfig locates the bucket that receives generated plans.
type ArchiveConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// PlanArchive keeps a copy of every generated account plan in an S3-compatible
// bucket. Writes are best effort from the caller's point of view.
type PlanArchive struct {
	client *minio.Client
	bucket string
}

// NewPlanArchive connects to the bucket named in cfg, creating it on first use.
func NewPlanArchive(ctx context.Context, cfg ArchiveConfig) (*PlanArchive, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("plan archive: endpoint and bucket are required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("plan archive %s: %w", cfg.Endpoint, err)
	}

	found, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("plan archive bucket %q: %w", cfg.Bucket, err)
	}
	if !found {
		err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region})
		// Another replica may have created it between the two calls.
		if err != nil && minio.ToErrorResponse(err).Code != "BucketAlreadyOwnedByYou" {
			return nil, fmt.Errorf("plan archive create bucket %q: %w", cfg.Bucket, err)
		}
	}
	return &PlanArchive{client: client, bucket: cfg.Bucket}, nil
}

// ArchivePlan stores a plan body under plans/<company-slug>/<uuid>.json and
// returns the object key.
func (a *PlanArchive) ArchivePlan(ctx context.Context, company string, body []byte) (string, error) {
	key := PlanKey(company, uuid.NewString())
	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("plan archive put %s: %w", key, err)
	}
	return key, nil
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// PlanKey builds the archive object key for a company plan.
func PlanKey(company, id string) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(company), "-"), "-")
	if slug == "" {
		slug = "unknown"
	}
	if len(slug) > 40 {
		slug = strings.TrimRight(slug[:40], "-")
	}
	return fmt.Sprintf("plans/%s/%s.json", slug, id)
}
