package packer

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

type memBucket struct {
	objects map[string][]byte
	deleted []string
}

func newMemBucket() *memBucket {
	return &memBucket{objects: make(map[string][]byte)}
}

func (m *memBucket) NewWriter(ctx context.Context, name string) io.WriteCloser {
	return &memWriter{bucket: m, name: name}
}

func (m *memBucket) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	for name := range m.objects {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	return names, nil
}

func (m *memBucket) Delete(ctx context.Context, name string) error {
	delete(m.objects, name)
	m.deleted = append(m.deleted, name)
	return nil
}

type memWriter struct {
	bucket *memBucket
	name   string
	buf    bytes.Buffer
}

func (w *memWriter) Write(p []byte) (int, error) { return w.buf.Write(p) }

func (w *memWriter) Close() error {
	w.bucket.objects[w.name] = w.buf.Bytes()
	return nil
}

func TestParseGCSPath(t *testing.T) {
	tests := []struct {
		path    string
		bucket  string
		prefix  string
		wantErr bool
	}{
		{"gs://bucket", "bucket", "", false},
		{"gs://bucket/", "bucket", "", false},
		{"gs://bucket/packs/v1", "bucket", "packs/v1/", false},
		{"gs://bucket/packs/v1/", "bucket", "packs/v1/", false},
		{"s3://bucket", "", "", true},
		{"gs://", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			bucket, prefix, err := ParseGCSPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseGCSPath() error = %v, wantErr %v", err, tt.wantErr)
			}
			if bucket != tt.bucket || prefix != tt.prefix {
				t.Errorf("ParseGCSPath() = (%q, %q), want (%q, %q)", bucket, prefix, tt.bucket, tt.prefix)
			}
		})
	}
}

func TestGCSUploader_Upload(t *testing.T) {
	tmpDir := t.TempDir()
	source := filepath.Join(tmpDir, "source")
	outputDir := filepath.Join(tmpDir, "output")
	writeTree(t, source, map[string][]byte{
		"a.txt":     []byte("alpha"),
		"dir/b.txt": []byte("beta"),
	})

	p := NewPacker(WithOutputDir(outputDir), WithTotalShards(4), WithProgress(nil))
	if _, err := p.PackPath(context.Background(), source, "", time.Time{}); err != nil {
		t.Fatalf("PackPath() error = %v", err)
	}

	bucket := newMemBucket()
	stale := "packs/blobs/00003/gone.txt.lzw"
	bucket.objects[stale] = []byte("stale")
	bucket.objects["packs/unrelated"] = []byte("keep")

	u := &GCSUploader{bucket: bucket, prefix: "packs/", logger: zap.NewNop()}

	var last Progress
	if err := u.Upload(context.Background(), outputDir, func(pr Progress) { last = pr }); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if _, ok := bucket.objects[stale]; ok {
		t.Error("stale blob was not deleted")
	}
	if _, ok := bucket.objects["packs/unrelated"]; !ok {
		t.Error("object outside the blob prefix was deleted")
	}
	if _, ok := bucket.objects["packs/"+ManifestFilename]; !ok {
		t.Error("manifest was not uploaded")
	}

	var blobs int
	for name := range bucket.objects {
		if strings.HasPrefix(name, "packs/blobs/") {
			blobs++
			local := filepath.Join(outputDir, filepath.FromSlash(strings.TrimPrefix(name, "packs/")))
			want, err := os.ReadFile(local)
			if err != nil {
				t.Fatalf("uploaded %s has no local file: %v", name, err)
			}
			if !bytes.Equal(bucket.objects[name], want) {
				t.Errorf("object %s differs from local file", name)
			}
		}
	}
	if blobs != 2 {
		t.Errorf("uploaded %d blobs, want 2", blobs)
	}
	if last.Phase != PhaseUpload || last.FilesPacked != 2 || last.FilesFound != 2 {
		t.Errorf("last progress = %+v", last)
	}
}

func TestGCSUploader_UploadManifest(t *testing.T) {
	bucket := newMemBucket()
	u := &GCSUploader{bucket: bucket, logger: zap.NewNop()}

	if err := u.UploadManifest(context.Background(), &Manifest{Version: 1, Codec: "lzw"}); err != nil {
		t.Fatalf("UploadManifest() error = %v", err)
	}
	if !bytes.Contains(bucket.objects[ManifestFilename], []byte(`"codec": "lzw"`)) {
		t.Errorf("manifest object = %s", bucket.objects[ManifestFilename])
	}
	if err := u.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
