package packer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"

	"github.com/discochess/lzwpack/internal/store"
)

// objectBucket is the subset of a GCS bucket the uploader uses.
type objectBucket interface {
	NewWriter(ctx context.Context, name string) io.WriteCloser
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, name string) error
}

// gcsBucket adapts a storage.BucketHandle to objectBucket.
type gcsBucket struct {
	handle *storage.BucketHandle
}

func (b gcsBucket) NewWriter(ctx context.Context, name string) io.WriteCloser {
	return b.handle.Object(name).NewWriter(ctx)
}

func (b gcsBucket) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	it := b.handle.Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return names, nil
		}
		if err != nil {
			return nil, err
		}
		names = append(names, attrs.Name)
	}
}

func (b gcsBucket) Delete(ctx context.Context, name string) error {
	return b.handle.Object(name).Delete(ctx)
}

// GCSUploader uploads pack output to Google Cloud Storage.
type GCSUploader struct {
	client *storage.Client
	bucket objectBucket
	prefix string
	logger *zap.Logger
}

// NewGCSUploader creates a new GCS uploader.
// gcsPath should be in the format "gs://bucket/prefix".
func NewGCSUploader(ctx context.Context, gcsPath string, logger *zap.Logger) (*GCSUploader, error) {
	bucket, prefix, err := ParseGCSPath(gcsPath)
	if err != nil {
		return nil, err
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating GCS client: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &GCSUploader{
		client: client,
		bucket: gcsBucket{handle: client.Bucket(bucket)},
		prefix: prefix,
		logger: logger,
	}, nil
}

// ParseGCSPath parses "gs://bucket/prefix" into bucket and prefix. A
// non-empty prefix always ends in a slash.
func ParseGCSPath(gcsPath string) (bucket, prefix string, err error) {
	if !strings.HasPrefix(gcsPath, "gs://") {
		return "", "", fmt.Errorf("invalid GCS path: must start with gs://")
	}

	path := strings.TrimPrefix(gcsPath, "gs://")
	parts := strings.SplitN(path, "/", 2)
	if parts[0] == "" {
		return "", "", fmt.Errorf("invalid GCS path: missing bucket name")
	}

	bucket = parts[0]
	if len(parts) > 1 {
		prefix = strings.TrimSuffix(parts[1], "/")
		if prefix != "" {
			prefix += "/"
		}
	}

	return bucket, prefix, nil
}

// Upload uploads the packed blobs and manifest from localDir to GCS.
// It uploads new blobs first (overwriting), then cleans up stale blobs.
// The manifest goes last so readers never see it ahead of its blobs.
func (u *GCSUploader) Upload(ctx context.Context, localDir string, progress ProgressFunc) error {
	blobsDir := filepath.Join(localDir, store.BlobDir)

	var names []string
	err := filepath.WalkDir(blobsDir, func(fpath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			rel, err := filepath.Rel(localDir, fpath)
			if err != nil {
				return err
			}
			names = append(names, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("reading blobs directory: %w", err)
	}

	uploaded := make(map[string]bool, len(names))
	for i, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := u.uploadFile(ctx, filepath.Join(localDir, filepath.FromSlash(name)), u.prefix+name); err != nil {
			return fmt.Errorf("uploading %s: %w", name, err)
		}
		uploaded[u.prefix+name] = true

		if progress != nil && ((i+1)%100 == 0 || i+1 == len(names)) {
			progress(Progress{
				Phase:       PhaseUpload,
				FilesPacked: int64(i + 1),
				FilesFound:  int64(len(names)),
			})
		}
	}

	// Stale blobs are harmless to readers of the new manifest.
	if err := u.cleanStaleBlobs(ctx, uploaded); err != nil {
		u.logger.Warn("failed to clean stale blobs", zap.Error(err))
	}

	manifestPath := filepath.Join(localDir, ManifestFilename)
	if _, err := os.Stat(manifestPath); err == nil {
		if err := u.uploadFile(ctx, manifestPath, u.prefix+ManifestFilename); err != nil {
			return fmt.Errorf("uploading manifest: %w", err)
		}
	}

	u.logger.Info("upload complete", zap.Int("objects", len(names)), zap.String("prefix", u.prefix))
	return nil
}

// cleanStaleBlobs deletes blob objects that are not part of the new pack.
func (u *GCSUploader) cleanStaleBlobs(ctx context.Context, current map[string]bool) error {
	names, err := u.bucket.List(ctx, u.prefix+store.BlobDir+"/")
	if err != nil {
		return fmt.Errorf("listing objects: %w", err)
	}

	for _, name := range names {
		if current[name] {
			continue
		}
		if err := u.bucket.Delete(ctx, name); err != nil {
			return fmt.Errorf("deleting stale blob %s: %w", name, err)
		}
		u.logger.Debug("deleted stale blob", zap.String("object", name))
	}

	return nil
}

// uploadFile uploads a single file to GCS.
func (u *GCSUploader) uploadFile(ctx context.Context, localPath, object string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := u.bucket.NewWriter(ctx, object)
	if _, err := io.Copy(writer, file); err != nil {
		writer.Close()
		return err
	}

	return writer.Close()
}

// UploadManifest uploads just the manifest to GCS.
func (u *GCSUploader) UploadManifest(ctx context.Context, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}

	writer := u.bucket.NewWriter(ctx, u.prefix+ManifestFilename)
	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return err
	}

	return writer.Close()
}

// Close releases resources.
func (u *GCSUploader) Close() error {
	if u.client == nil {
		return nil
	}
	return u.client.Close()
}
