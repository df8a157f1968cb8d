package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidPath = errors.New("invalid storage path")

// Storage keeps uploaded files and hands back a public URL for them.
type Storage interface {
	// Save writes r under dir using a generated name with the given extension.
	Save(ctx context.Context, dir, ext string, r io.Reader) (Object, error)
	// Delete removes the object behind a URL previously returned by Save.
	Delete(ctx context.Context, url string) error
}

// Object describes a stored file.
type Object struct {
	Name string
	URL  string
}

// Local stores files on disk under root and serves them from urlPrefix.
type Local struct {
	root      string
	urlPrefix string
}

func NewLocal(root, urlPrefix string) *Local {
	return &Local{root: root, urlPrefix: strings.TrimRight(urlPrefix, "/")}
}

func (l *Local) Save(ctx context.Context, dir, ext string, r io.Reader) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}
	if strings.Contains(dir, "..") {
		return Object{}, ErrInvalidPath
	}

	name := uuid.NewString() + ext
	dest := filepath.Join(l.root, dir)
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return Object{}, err
	}

	f, err := os.Create(filepath.Join(dest, name))
	if err != nil {
		return Object{}, err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.Remove(f.Name())
		return Object{}, fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return Object{}, err
	}

	return Object{Name: name, URL: path.Join(l.urlPrefix, dir, name)}, nil
}

func (l *Local) Delete(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !strings.HasPrefix(url, l.urlPrefix+"/") {
		return ErrInvalidPath
	}
	rel := strings.TrimPrefix(url, l.urlPrefix+"/")
	if rel == "" || strings.Contains(rel, "..") {
		return ErrInvalidPath
	}
	err := os.Remove(filepath.Join(l.root, filepath.FromSlash(rel)))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
