package s3store

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/discochess/lzwpack/internal/codec/lzwcodec"
	"github.com/discochess/lzwpack/internal/codec/zstdcodec"
	"github.com/discochess/lzwpack/internal/store"
)

// fakeS3 is an in-memory objectAPI.
type fakeS3 struct {
	objects  map[string][]byte
	pageSize int
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte), pageSize: 2}
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	var names []string
	for name := range f.objects {
		if strings.HasPrefix(name, aws.ToString(in.Prefix)) && name > aws.ToString(in.ContinuationToken) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	out := &s3.ListObjectsV2Output{}
	if len(names) > f.pageSize {
		names = names[:f.pageSize]
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String(names[len(names)-1])
	}
	for _, name := range names {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(name)})
	}
	return out, nil
}

func TestWithPrefix(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"prefix", "prefix/"},
		{"prefix/", "prefix/"},
		{"a/b/c/", "a/b/c/"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			s := &Store{}
			if err := WithPrefix(tt.input)(s); err != nil {
				t.Fatalf("WithPrefix() error = %v", err)
			}
			if s.prefix != tt.want {
				t.Errorf("prefix = %q, want %q", s.prefix, tt.want)
			}
		})
	}
}

func TestStore_objectKey(t *testing.T) {
	s := &Store{codec: zstdcodec.New(), prefix: "data/v1/"}

	if got, want := s.objectKey("00042/a.txt"), "data/v1/blobs/00042/a.txt.zst"; got != want {
		t.Errorf("objectKey() = %q, want %q", got, want)
	}
}

func TestStore_WriteReadBlob(t *testing.T) {
	fake := newFakeS3()
	s := &Store{client: fake, bucket: "test", prefix: "pack/", codec: lzwcodec.New()}
	ctx := context.Background()

	data := bytes.Repeat([]byte("s3 blob data "), 50)
	if err := s.WriteBlob(ctx, "00003/x", data); err != nil {
		t.Fatalf("WriteBlob() error = %v", err)
	}
	if _, ok := fake.objects["pack/blobs/00003/x.lzw"]; !ok {
		t.Fatalf("object not stored under expected key: %v", fake.objects)
	}

	got, err := s.ReadBlob(ctx, "00003/x")
	if err != nil {
		t.Fatalf("ReadBlob() error = %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("ReadBlob() returned different data")
	}
}

func TestStore_ReadBlobNotFound(t *testing.T) {
	s := &Store{client: newFakeS3(), bucket: "test", codec: lzwcodec.New()}

	_, err := s.ReadBlob(context.Background(), "00000/missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("ReadBlob() error = %v, want ErrNotFound", err)
	}
}

func TestStore_Keys(t *testing.T) {
	fake := newFakeS3()
	s := &Store{client: fake, bucket: "test", prefix: "p/", codec: lzwcodec.New()}
	ctx := context.Background()

	want := []string{"00001/a", "00001/b", "00002/c", "00003/d", "00004/e"}
	for _, key := range want {
		if err := s.WriteBlob(ctx, key, []byte(key)); err != nil {
			t.Fatalf("WriteBlob() error = %v", err)
		}
	}
	fake.objects["p/manifest.json"] = []byte("{}")

	keys, err := s.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys() error = %v", err)
	}
	if strings.Join(keys, ",") != strings.Join(want, ",") {
		t.Errorf("Keys() = %v, want %v", keys, want)
	}
}

func TestStore_Close(t *testing.T) {
	s := &Store{}
	if err := s.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
