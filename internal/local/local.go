// Package local mirrors scaffold repositories onto the local filesystem.
package local

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/zulandar/roadmapper/internal/catalog"
)

// Mirror writes repo scaffolds under Root. Files that already exist are
// left untouched.
type Mirror struct {
	Root string
}

// New returns a Mirror rooted at dir.
func New(dir string) *Mirror {
	return &Mirror{Root: dir}
}

// Dir is the local directory for a repo.
func (m *Mirror) Dir(repo string) string {
	return filepath.Join(m.Root, repo)
}

// Missing lists the files of the repository not yet present locally. It never writes.
func (m *Mirror) Missing(ctx context.Context, spec catalog.RepoSpec) ([]string, error) {
	var missing []string
	for _, f := range spec.Files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		full, err := m.path(spec.Name, f.Path)
		if err != nil {
			return nil, err
		}
		_, err = os.Stat(full)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			missing = append(missing, f.Path)
		case err != nil:
			return nil, fmt.Errorf("local: stat %s: %w", full, err)
		}
	}
	return missing, nil
}

// Ensure creates the repo directory and every missing file, returning how
// many files were written.
func (m *Mirror) Ensure(ctx context.Context, spec catalog.RepoSpec) (int, error) {
	if err := os.MkdirAll(m.Dir(spec.Name), 0o755); err != nil {
		return 0, fmt.Errorf("local: mkdir %s: %w", m.Dir(spec.Name), err)
	}
	written := 0
	for _, f := range spec.Files {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		full, err := m.path(spec.Name, f.Path)
		if err != nil {
			return written, err
		}
		ok, err := writeIfAbsent(full, []byte(f.Content))
		if err != nil {
			return written, err
		}
		if ok {
			written++
		}
	}
	return written, nil
}

func (m *Mirror) path(repo, rel string) (string, error) {
	local := filepath.FromSlash(rel)
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("local: %s: path %q escapes the repo directory", repo, rel)
	}
	return filepath.Join(m.Dir(repo), local), nil
}

func writeIfAbsent(full string, data []byte) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return false, fmt.Errorf("local: mkdir %s: %w", filepath.Dir(full), err)
	}
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("local: create %s: %w", full, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return false, fmt.Errorf("local: write %s: %w", full, err)
	}
	if err := f.Close(); err != nil {
		return false, fmt.Errorf("local: close %s: %w", full, err)
	}
	return true, nil
}
