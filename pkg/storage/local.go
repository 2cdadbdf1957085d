package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

type localDisk struct {
	root string
}

// NewLocal stores files under root, resolved against the working directory
// when relative.
func NewLocal(root string) Disk {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return &localDisk{root: root}
}

func (d *localDisk) Driver() string { return "local" }

func (d *localDisk) file(path string) string {
	return filepath.Join(d.root, filepath.FromSlash(path))
}

// Put writes to a temp file in the same directory and renames it over path.
func (d *localDisk) Put(ctx context.Context, path string, content []byte) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	full := d.file(path)
	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return opError("local", "mkdir", path, err)
	}

	tmp, err := os.CreateTemp(dir, ".put-*")
	if err != nil {
		return opError("local", "put", path, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(content); err != nil {
		_ = tmp.Close()
		return opError("local", "write", path, err)
	}
	if err = tmp.Close(); err != nil {
		return opError("local", "close", path, err)
	}
	if err = os.Rename(tmp.Name(), full); err != nil {
		return opError("local", "rename", path, err)
	}
	return nil
}

func (d *localDisk) Get(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(d.file(path))
	if err != nil {
		return nil, opError("local", "get", path, notFound(err))
	}
	return data, nil
}

func (d *localDisk) Stat(ctx context.Context, path string) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}
	info, err := os.Stat(d.file(path))
	if err != nil {
		return time.Time{}, opError("local", "stat", path, notFound(err))
	}
	return info.ModTime(), nil
}

func (d *localDisk) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(d.file(path)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return opError("local", "delete", path, err)
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	return err
}
