package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/user/advisory-service/internal/entity"
)

// FileName joins the entities in input order with "-", replaces spaces with "_" and adds ".json".
func FileName(entities []string) string {
	return strings.ReplaceAll(strings.Join(entities, "-"), " ", "_") + ".json"
}

// WriteJSON writes the aggregate as 4-space indented UTF-8 JSON into dir and returns the path.
// Non-ASCII text and characters such as & or < are written as is.
func WriteJSON(dir string, entities []string, aggregate entity.AggregateResult) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating output directory: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(aggregate); err != nil {
		return "", fmt.Errorf("encode results: %w", err)
	}

	path := filepath.Join(dir, FileName(entities))
	if err := os.WriteFile(path, bytes.TrimRight(buf.Bytes(), "\n"), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
