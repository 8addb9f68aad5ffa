// Package atomicfile stages an output file beside its destination and
// renames it into place on Commit.
package atomicfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

// Pending is a fully or partially written file that is not yet visible at
// its destination. It implements domain.PendingOutput.
type Pending struct {
	pf   *renameio.PendingFile
	path string
	done bool
}

// Create opens a temporary sibling of path, creating the parent directory
// if needed.
func Create(path string) (*Pending, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	pf, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return &Pending{pf: pf, path: path}, nil
}

func (p *Pending) Write(b []byte) (int, error) {
	return p.pf.Write(b)
}

// Commit replaces the destination with the staged file.
func (p *Pending) Commit() error {
	if p.done {
		return nil
	}
	p.done = true
	if err := p.pf.CloseAtomicallyReplace(); err != nil {
		_ = p.pf.Cleanup()
		return fmt.Errorf("replace %s: %w", p.path, err)
	}
	return nil
}

// Discard removes the staged file and leaves the destination untouched. It
// is a no-op after Commit.
func (p *Pending) Discard() error {
	if p.done {
		return nil
	}
	p.done = true
	return p.pf.Cleanup()
}
