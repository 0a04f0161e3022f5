package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Deliverer hands an artifact to the user: a file on disk, a download, an
// upload. Encoders never know which.
type Deliverer interface {
	Deliver(ctx context.Context, a Artifact) error
}

// DirDeliverer writes artifacts into Dir using their file names.
type DirDeliverer struct {
	Dir string
}

func (d DirDeliverer) Deliver(ctx context.Context, a Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := d.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	// Artifact names are fixed by the encoders; Base guards against a
	// crafted name escaping the directory.
	path := filepath.Join(dir, filepath.Base(a.Filename))
	if err := os.WriteFile(path, a.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Path returns where Deliver puts an artifact with the given file name.
func (d DirDeliverer) Path(filename string) string {
	dir := d.Dir
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, filepath.Base(filename))
}
