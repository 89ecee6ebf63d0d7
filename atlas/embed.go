package atlas

import (
	"embed"
	"os"
	"path/filepath"
	"strings"
)

//go:embed *.yaml
var CatalogFS embed.FS

// Load returns the named document from dir on disk, falling back to the
// embedded copy when dir is empty or the file is missing.
func Load(dir, name string) ([]byte, error) {
	clean := cleanCatalogPath(name)
	if dir != "" {
		if data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(clean))); err == nil {
			return data, nil
		}
	}
	return CatalogFS.ReadFile(clean)
}

func cleanCatalogPath(path string) string {
	if path == "" {
		return ""
	}
	s := filepath.ToSlash(path)
	if after, ok := strings.CutPrefix(s, "atlas/"); ok {
		return after
	}
	return s
}
