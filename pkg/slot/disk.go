package slot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diybuddy/projectbuddy/pkg/storage"
)

// Disk keeps each key as "<key>.json" on a storage.Disk (local or s3).
type Disk struct {
	disk storage.Disk
}

func NewDisk(d storage.Disk) *Disk { return &Disk{disk: d} }

func (d *Disk) Name() string { return d.disk.Driver() }

func file(key string) string { return key + ".json" }

func (d *Disk) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := d.disk.Get(ctx, file(key))
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return nil, ErrMissing
	case err != nil:
		return nil, fmt.Errorf("slot/%s: %w", d.Name(), err)
	}
	return data, nil
}

func (d *Disk) Put(ctx context.Context, key string, value []byte) error {
	if err := d.disk.Put(ctx, file(key), value); err != nil {
		return fmt.Errorf("slot/%s: %w", d.Name(), err)
	}
	return nil
}

func (d *Disk) Forget(ctx context.Context, key string) error {
	if err := d.disk.Delete(ctx, file(key)); err != nil {
		return fmt.Errorf("slot/%s: %w", d.Name(), err)
	}
	return nil
}

// SavedAt reports when key was last written, or ErrMissing.
func (d *Disk) SavedAt(ctx context.Context, key string) (time.Time, error) {
	t, err := d.disk.Stat(ctx, file(key))
	if errors.Is(err, storage.ErrNotFound) {
		return time.Time{}, ErrMissing
	}
	return t, err
}
