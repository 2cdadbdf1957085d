// Package slot holds named durable key-value slots. The basket lives in one
// slot; which backend keeps it is a configuration choice.
//
//	s, err := slot.Open(ctx, "local")
//	data, err := s.Get(ctx, "projectBasket")
//	if errors.Is(err, slot.ErrMissing) { ... }
package slot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diybuddy/projectbuddy/config"
	"github.com/diybuddy/projectbuddy/pkg/metrics"
	"github.com/diybuddy/projectbuddy/pkg/storage"
)

// ErrMissing is returned by Get when nothing is stored under the key.
var ErrMissing = errors.New("slot: key not found")

// Store is a durable key-value slot backend.
type Store interface {
	// Get returns the stored bytes or ErrMissing.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put replaces whatever is stored under key.
	Put(ctx context.Context, key string, value []byte) error

	// Forget deletes key. Forgetting a missing key is not an error.
	Forget(ctx context.Context, key string) error

	// Name is the driver name used in logs and metrics.
	Name() string
}

// Timestamper is implemented by drivers that know when a key was written.
type Timestamper interface {
	SavedAt(ctx context.Context, key string) (time.Time, error)
}

// Closer is implemented by drivers that hold a connection.
type Closer interface {
	Close(ctx context.Context) error
}

// Open builds the driver named by driver from config, verifies it answers,
// and wraps it with metrics.
func Open(ctx context.Context, driver string) (Store, error) {
	var (
		s   Store
		err error
	)

	switch driver {
	case "memory":
		s = NewMemory()
	case "local":
		s = NewDisk(storage.NewLocal(config.StorageLocalRoot()))
	case "s3":
		var d storage.Disk
		d, err = storage.NewS3(ctx, storage.S3Options{
			Bucket:   config.StorageS3Bucket(),
			Region:   config.StorageS3Region(),
			Key:      config.StorageS3Key(),
			Secret:   config.StorageS3Secret(),
			Endpoint: config.StorageS3Endpoint(),
			Prefix:   config.StorageS3Prefix(),
		})
		if err == nil {
			s = NewDisk(d)
		}
	case "redis":
		s, err = OpenRedis(ctx, RedisOptions{
			Addr:     config.RedisAddr(),
			Password: config.RedisPassword(),
			DB:       config.RedisDB(),
		})
	case "mongo":
		s, err = OpenMongo(ctx, config.MongoURI(), config.MongoDatabase(), config.MongoCollection())
	case "database":
		s, err = OpenDatabase(config.DatabaseDriver(), config.DatabaseDSN())
	default:
		return nil, fmt.Errorf("slot: unsupported driver %q (supported: memory, local, s3, redis, mongo, database)", driver)
	}
	if err != nil {
		return nil, err
	}

	return Instrument(s), nil
}

// Close releases the driver's connection if it holds one.
func Close(ctx context.Context, s Store) error {
	if c, ok := s.(Closer); ok {
		return c.Close(ctx)
	}
	return nil
}

// SavedAt reports when key was last written. Drivers that keep no
// timestamps return errors.ErrUnsupported; a missing key is ErrMissing.
func SavedAt(ctx context.Context, s Store, key string) (time.Time, error) {
	ts, ok := s.(Timestamper)
	if !ok {
		return time.Time{}, errors.ErrUnsupported
	}
	return ts.SavedAt(ctx, key)
}

// Ping reports whether the slot backend answers. A missing key counts as
// an answer.
func Ping(ctx context.Context, s Store) error {
	_, err := s.Get(ctx, "__ping__")
	if err != nil && !errors.Is(err, ErrMissing) {
		return err
	}
	return nil
}

// ─── Instrumentation ──────────────────────────────────────────────────────────

type instrumented struct {
	inner Store
}

// Instrument wraps s so every call is timed in metrics.SlotOpDuration.
func Instrument(s Store) Store {
	if _, ok := s.(*instrumented); ok {
		return s
	}
	return &instrumented{inner: s}
}

func (i *instrumented) Name() string { return i.inner.Name() }

func (i *instrumented) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	data, err := i.inner.Get(ctx, key)
	metrics.ObserveSlotOp(i.inner.Name(), "get", start, err != nil && !errors.Is(err, ErrMissing))
	return data, err
}

func (i *instrumented) Put(ctx context.Context, key string, value []byte) error {
	start := time.Now()
	err := i.inner.Put(ctx, key, value)
	metrics.ObserveSlotOp(i.inner.Name(), "put", start, err != nil)
	return err
}

func (i *instrumented) Forget(ctx context.Context, key string) error {
	start := time.Now()
	err := i.inner.Forget(ctx, key)
	metrics.ObserveSlotOp(i.inner.Name(), "forget", start, err != nil)
	return err
}

func (i *instrumented) SavedAt(ctx context.Context, key string) (time.Time, error) {
	return SavedAt(ctx, i.inner, key)
}

func (i *instrumented) Close(ctx context.Context) error {
	return Close(ctx, i.inner)
}
