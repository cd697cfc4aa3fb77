package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteJSON marshals v into path.
func WriteJSON(t testing.TB, path string, v any) string {
	t.Helper()

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal %s: %v", path, err)
	}
	return WriteFile(t, path, string(data))
}

// ReadJSON decodes the JSON document at path into a generic value.
func ReadJSON(t testing.TB, path string) any {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return v
}

// GroundTruth builds a minimal COCO ground-truth document from name/id pairs.
func GroundTruth(categories map[string]int) map[string]any {
	cats := make([]map[string]any, 0, len(categories))
	for name, id := range categories {
		cats = append(cats, map[string]any{"name": name, "id": id})
	}
	return map[string]any{"images": []any{}, "annotations": []any{}, "categories": cats}
}
