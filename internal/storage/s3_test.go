package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/starford/draftdeck/internal/apperr"
)

type fakeS3 struct {
	objects map[string][]byte
	types   map[string]string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	b, _ := io.ReadAll(in.Body)
	f.objects[*in.Key] = b
	f.types[*in.Key] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	b, ok := f.objects[*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(b))}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	for k, v := range f.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			out.Contents = append(out.Contents, types.Object{Key: aws.String(k), Size: aws.Int64(int64(len(v)))})
		}
	}
	return out, nil
}

func TestS3RoundTrip(t *testing.T) {
	fake := newFakeS3()
	s := NewS3WithClient(fake, "bucket")
	ctx := context.Background()

	if err := s.Put(ctx, "exports/1/x.pptx", "application/test", []byte("deck")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if fake.types["exports/1/x.pptx"] != "application/test" {
		t.Errorf("content type = %q", fake.types["exports/1/x.pptx"])
	}
	got, err := s.Get(ctx, "exports/1/x.pptx")
	if err != nil || string(got) != "deck" {
		t.Fatalf("Get = %q, %v", got, err)
	}
	objs, err := s.List(ctx, "exports/1/")
	if err != nil || len(objs) != 1 || objs[0].Size != 4 {
		t.Fatalf("List = %+v, %v", objs, err)
	}
	if err := s.Delete(ctx, "exports/1/x.pptx"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "exports/1/x.pptx"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Get after delete err = %v", err)
	}
}

func TestS3ListEmptyEncodesAsArray(t *testing.T) {
	s := NewS3WithClient(newFakeS3(), "bucket")
	objs, err := s.List(context.Background(), "exports/9/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[]" {
		t.Errorf("List JSON = %s, want []", data)
	}
}
