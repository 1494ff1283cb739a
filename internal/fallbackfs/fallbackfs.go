package fallbackfs

import (
	"errors"
	"io/fs"
	"path"
)

type wrapper struct {
	fs       fs.FS
	fallback string
}

type FS interface {
	Open(name string) (fs.File, error)
}

// Open falls back to the configured file for missing extensionless paths, so
// client side routes resolve to the app shell while missing assets still 404.
func (w wrapper) Open(name string) (fs.File, error) {
	f, err := w.fs.Open(name)
	if err != nil && errors.Is(err, fs.ErrNotExist) && path.Ext(name) == "" {
		return w.fs.Open(w.fallback)
	}
	return f, err
}

func New(fs fs.FS, fallbackToFile string) FS {
	return wrapper{
		fs:       fs,
		fallback: fallbackToFile,
	}
}
