// Package storage is a small blob store over a local directory or an
// S3-compatible bucket (AWS S3, MinIO, R2, Spaces). Paths use forward
// slashes on every driver.
//
//	disk := storage.NewLocal("storage")
//	_ = disk.Put(ctx, "projectBasket.json", data)
//	data, err := disk.Get(ctx, "projectBasket.json")
//	if errors.Is(err, storage.ErrNotFound) { ... }
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is wrapped by every driver when path does not exist.
var ErrNotFound = errors.New("storage: file not found")

// Disk is implemented by each driver.
type Disk interface {
	// Put replaces the object at path; readers never observe a partial write.
	Put(ctx context.Context, path string, content []byte) error
	Get(ctx context.Context, path string) ([]byte, error)
	// Stat reports the last write time, or ErrNotFound.
	Stat(ctx context.Context, path string) (time.Time, error)
	// Delete of a missing path is not an error.
	Delete(ctx context.Context, path string) error
	Driver() string
}

func opError(driver, op, path string, err error) error {
	return fmt.Errorf("storage/%s: %s %s: %w", driver, op, path, err)
}
