// internal/scenario/loader.go
package scenario

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// Load resolves ref as a file path when one exists, otherwise as the name of
// a built-in scenario.
func Load(ref string) (*Scenario, error) {
	if st, err := os.Stat(ref); err == nil && !st.IsDir() {
		return LoadFile(ref)
	}
	data, err := builtinFS.ReadFile("builtin/" + ref + ".yaml")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("scenario %q not found (built-in: %s)", ref, strings.Join(List(), ", "))
		}
		return nil, err
	}
	return Parse(data)
}

// LoadFile reads and parses a scenario document from disk.
func LoadFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return Parse(data)
}

// List returns the built-in scenario names, sorted.
func List() []string {
	entries, _ := builtinFS.ReadDir("builtin")
	var names []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".yaml") {
			names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
		}
	}
	sort.Strings(names)
	return names
}
