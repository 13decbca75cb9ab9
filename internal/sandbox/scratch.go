package sandbox

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/xid"
)

// scratchFile is a unique temporary file holding one request's source,
// created immediately before spawn and guaranteed to be removed on every
// exit path (spec.md §3 "Scratch artifact"). xid gives a collision-
// resistant, sortable, allocation-free id without reaching for crypto/rand
// plus manual hex-encoding — the same library the teacher already uses for
// request/session identifiers.
type scratchFile struct {
	path string
}

func acquireScratchFile(dir, code string) (*scratchFile, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("sandbox: create scratch dir: %w", err)
	}
	name := fmt.Sprintf("pyrunner-%s.py", xid.New().String())
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(code), 0o600); err != nil {
		return nil, fmt.Errorf("sandbox: write scratch file: %w", err)
	}
	return &scratchFile{path: path}, nil
}

// release deletes the scratch file. Safe to call more than once and safe
// to call when the file was never created.
func (s *scratchFile) release() {
	if s == nil || s.path == "" {
		return
	}
	_ = os.Remove(s.path)
}

func defaultScratchDir() string {
	return filepath.Join(os.TempDir(), "pyrunner")
}
