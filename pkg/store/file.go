package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/matzehuels/stateflow/pkg/errors"
	"github.com/matzehuels/stateflow/pkg/io"
	"github.com/matzehuels/stateflow/pkg/model"
)

// File stores each diagram as <id>.json in a directory.
type File struct {
	mu      sync.RWMutex
	baseDir string
}

// DefaultFileDir returns $XDG_DATA_HOME/stateflow/diagrams, falling back
// to ~/.local/share when XDG_DATA_HOME is unset.
func DefaultFileDir() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "stateflow", "diagrams"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share", "stateflow", "diagrams"), nil
}

// NewFile creates a file store rooted at baseDir, creating it if needed.
// An empty baseDir selects [DefaultFileDir].
func NewFile(baseDir string) (*File, error) {
	if baseDir == "" {
		dir, err := DefaultFileDir()
		if err != nil {
			return nil, err
		}
		baseDir = dir
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, unavailable(err, "create diagram dir")
	}
	return &File{baseDir: baseDir}, nil
}

// Path returns the base directory for diagram files.
func (s *File) Path() string {
	return s.baseDir
}

func (s *File) diagramPath(id string) (string, error) {
	if err := errors.ValidateID(id); err != nil {
		return "", err
	}
	return filepath.Join(s.baseDir, id+".json"), nil
}

func (s *File) Get(ctx context.Context, id string) (*model.Diagram, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	path, err := s.diagramPath(id)
	if err != nil {
		return nil, NotFound(id)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NotFound(id)
		}
		return nil, unavailable(err, "read diagram %s", id)
	}
	return io.UnmarshalRecord(data)
}

func (s *File) Put(ctx context.Context, d *model.Diagram) error {
	if err := alive(ctx); err != nil {
		return err
	}
	if err := checkPut(d); err != nil {
		return err
	}
	path, _ := s.diagramPath(d.ID)
	data, err := io.Export(d, io.FormatJSON)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return unavailable(err, "write diagram %s", d.ID)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return unavailable(err, "write diagram %s", d.ID)
	}
	return nil
}

func (s *File) Delete(ctx context.Context, id string) error {
	if err := alive(ctx); err != nil {
		return err
	}
	path, err := s.diagramPath(id)
	if err != nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return unavailable(err, "remove diagram %s", id)
	}
	return nil
}

// List reads every record in the directory. Files that fail to parse are
// skipped so one corrupt document does not hide the rest.
func (s *File) List(ctx context.Context) ([]Summary, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, unavailable(err, "read diagram dir")
	}

	out := make([]Summary, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, name))
		if err != nil {
			continue
		}
		d, err := io.UnmarshalRecord(data)
		if err != nil {
			continue
		}
		if d.ID == "" {
			d.ID = strings.TrimSuffix(name, ".json")
		}
		out = append(out, Summarize(d))
	}
	SortSummaries(out)
	return out, nil
}

func (s *File) Close() error { return nil }

var _ Store = (*File)(nil)
