package rundown

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Logger is the logging interface used by sources and the watcher.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Source fetches the current rundown. A failed Load leaves the caller
// without a show; no partial tree is ever returned.
type Source interface {
	Load(ctx context.Context) (*Show, error)
}

// FileSource reads a rundown document from disk.
type FileSource struct {
	Path string
}

// Load implements Source.
func (s FileSource) Load(_ context.Context) (*Show, error) {
	return LoadFile(s.Path)
}

// LoadFile reads, decodes and parses a YAML or JSON rundown file. A document
// without an id takes the file's base name.
func LoadFile(path string) (*Show, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator config
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrShowNotFound, path)
		}
		return nil, fmt.Errorf("reading rundown file: %w", err)
	}

	doc, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if doc.ID == "" {
		doc.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return Parse(doc)
}

// RepositorySource loads a stored show document by id.
type RepositorySource struct {
	Repo   Repository
	ShowID string
}

// Load implements Source.
func (s RepositorySource) Load(ctx context.Context) (*Show, error) {
	doc, err := s.Repo.Get(ctx, s.ShowID)
	if err != nil {
		return nil, err
	}
	return Parse(doc)
}
