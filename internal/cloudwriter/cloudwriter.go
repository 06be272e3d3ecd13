// Package cloudwriter buffers exported plan files and uploads them to object
// storage when they are closed.
package cloudwriter

import "context"

type CloudWriter interface {
	Write(data []byte) (int, error)
	Close() error
}

type CloudWriterFactory interface {
	NewWriter(ctx context.Context, bucket, objectPath string) (CloudWriter, error)
}
