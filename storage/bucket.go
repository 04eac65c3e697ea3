package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob" // file:// output roots
	_ "gocloud.dev/blob/memblob"  // mem:// output roots for dry runs
)

// DryRunURL is an in-memory bucket; nothing it receives reaches the disk.
const DryRunURL = "mem://"

// Bucket writes objects into a gocloud.dev blob bucket.
type Bucket struct {
	bucket   *blob.Bucket
	location string
}

// IsBucketURL reports whether an output root names a bucket rather than a directory.
func IsBucketURL(root string) bool {
	return strings.Contains(root, "://")
}

// OpenBucket opens the bucket at bucketURL. For file:// URLs the root
// directory is created on demand and no attribute sidecar files are written
// next to the resources.
func OpenBucket(ctx context.Context, bucketURL string) (*Bucket, error) {
	u, err := url.Parse(bucketURL)
	if err != nil {
		return nil, fmt.Errorf("parse bucket url: %w", err)
	}

	openURL := bucketURL
	if u.Scheme == "file" {
		q := u.Query()
		if !q.Has("create_dir") {
			q.Set("create_dir", "true")
		}
		if !q.Has("metadata") {
			q.Set("metadata", "skip")
		}
		u.RawQuery = q.Encode()
		openURL = u.String()
	}

	b, err := blob.OpenBucket(ctx, openURL)
	if err != nil {
		return nil, fmt.Errorf("open bucket %s: %w", bucketURL, err)
	}

	location, _, _ := strings.Cut(bucketURL, "?")
	return &Bucket{bucket: b, location: location}, nil
}

// NewBucket wraps an already opened bucket.
func NewBucket(b *blob.Bucket, location string) *Bucket {
	return &Bucket{bucket: b, location: location}
}

// Location returns the object URL for rel.
func (b *Bucket) Location(rel string) string {
	if strings.HasSuffix(b.location, "://") {
		return b.location + rel
	}
	return strings.TrimRight(b.location, "/") + "/" + rel
}

// EnsureDir is a no-op: object stores have no directories.
func (b *Bucket) EnsureDir(_ context.Context, _ string) error {
	return nil
}

// WriteFile stores data under rel, replacing any previous object.
func (b *Bucket) WriteFile(ctx context.Context, rel string, data []byte) error {
	if err := checkRel(rel); err != nil {
		return err
	}
	if err := b.bucket.WriteAll(ctx, rel, data, nil); err != nil {
		return fmt.Errorf("write %s: %w", b.Location(rel), err)
	}
	return nil
}

// ReadFile returns the object stored under rel.
func (b *Bucket) ReadFile(ctx context.Context, rel string) ([]byte, error) {
	return b.bucket.ReadAll(ctx, rel)
}

// Close releases the bucket.
func (b *Bucket) Close() error {
	return b.bucket.Close()
}
