package prompt

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

//go:embed fragments/*.txt
var fragmentFS embed.FS

// SystemFragment is the key of the base system instructions.
const SystemFragment = "system"

// Store resolves named instruction fragments. Fragments ship embedded in the
// binary; a directory override lets deployments swap them without a rebuild.
// A missing fragment is an error, never silently empty.
type Store struct {
	dir string
}

// NewStore returns a fragment store. dir is optional; when set, files named
// <name>.txt under it take precedence over the embedded defaults.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Fragment returns the instruction text registered under name.
func (s *Store) Fragment(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("fragment name must not be empty")
	}

	if s.dir != "" {
		b, err := os.ReadFile(filepath.Join(s.dir, name+".txt"))
		if err == nil {
			return string(b), nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("read fragment %q: %w", name, err)
		}
	}

	b, err := fragmentFS.ReadFile("fragments/" + name + ".txt")
	if err != nil {
		return "", fmt.Errorf("unknown instruction fragment %q", name)
	}
	return string(b), nil
}
