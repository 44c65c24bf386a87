package lookup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExportName builds "<prefix>_<Name_With_Underscores>.json".
func ExportName(prefix, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "unknown"
	}
	name = strings.NewReplacer(" ", "_", "/", "_", `\`, "_").Replace(name)
	return prefix + "_" + name + ".json"
}

// Export writes v as indented JSON to dir/<prefix>_<name>.json and returns
// the path written.
func Export(dir, prefix, name string, v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("lookup: encode %s: %w", prefix, err)
	}

	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, ExportName(prefix, name))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("lookup: write %s: %w", path, err)
	}
	return path, nil
}
