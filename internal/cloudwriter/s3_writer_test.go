package cloudwriter

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakePutter struct {
	calls  int
	bucket string
	key    string
	body   []byte
	err    error
}

func (f *fakePutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.calls++
	f.bucket = *params.Bucket
	f.key = *params.Key
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.body = body
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3WriterUploadsOnClose(t *testing.T) {
	putter := &fakePutter{}
	factory := NewS3WriterFactoryFromClient(putter)

	w, err := factory.NewWriter(context.Background(), "plans", "2026/plan.parquet")
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}
	w.Write([]byte("PAR1"))
	w.Write([]byte("data"))
	if putter.calls != 0 {
		t.Fatal("Expected nothing uploaded before Close")
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Second Close failed: %v", err)
	}
	if putter.calls != 1 {
		t.Errorf("Expected one upload, got %d", putter.calls)
	}
	if putter.bucket != "plans" || putter.key != "2026/plan.parquet" || string(putter.body) != "PAR1data" {
		t.Errorf("Unexpected upload %s/%s %q", putter.bucket, putter.key, putter.body)
	}
	if _, err := w.Write([]byte("late")); err == nil {
		t.Error("Expected write after close to fail")
	}
}

func TestS3WriterErrors(t *testing.T) {
	boom := errors.New("access denied")
	factory := NewS3WriterFactoryFromClient(&fakePutter{err: boom})

	if _, err := factory.NewWriter(context.Background(), "", "x"); err == nil {
		t.Error("Expected empty bucket to fail")
	}

	w, err := factory.NewWriter(context.Background(), "plans", "x")
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); !errors.Is(err, boom) {
		t.Errorf("Expected upload error to wrap %v, got %v", boom, err)
	}
}
