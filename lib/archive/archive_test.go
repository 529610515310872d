package archive

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"testing"
)

// fileNamePattern matches <prefix>_<YYYYMMDDTHHMMSSmmm>_<8 hex chars><ext>
var fileNamePattern = regexp.MustCompile(`^backup_\d{8}T\d{6}\d{3}_[0-9a-f]{8}\.dtdb$`)

// TestStoreWrite tests writing a file and its naming convention
func TestStoreWrite(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "backups"), "backup", ".dtdb", 0)

	path, err := store.Write(map[string]any{"hello": "world"})
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	name := filepath.Base(path)
	if !fileNamePattern.MatchString(name) {
		t.Errorf("File name %q does not match the naming convention", name)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read written file: %v", err)
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		t.Fatalf("Written file is not valid JSON: %v", err)
	}
	if data["hello"] != "world" {
		t.Errorf("Written content wrong: %v", data)
	}
}

// TestStoreWriteRaw tests that raw bytes are stored unchanged
func TestStoreWriteRaw(t *testing.T) {
	store := NewStore(t.TempDir(), "log", ".q", 0)

	body := []byte(`{"className":"Query","target":"users","type":"count"}`)
	path, err := store.WriteRaw(body)
	if err != nil {
		t.Fatalf("WriteRaw returned error: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read written file: %v", err)
	}
	if string(raw) != string(body) {
		t.Errorf("WriteRaw changed the content: %s", raw)
	}
}

// TestStoreList tests listing, ordering and the missing folder edge case
func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, "log", ".q", 0)

	// a store that never wrote anything lists nothing
	missing := NewStore(filepath.Join(dir, "does-not-exist"), "log", ".q", 0)
	paths, err := missing.List()
	if err != nil {
		t.Fatalf("List on a missing folder returned error: %v", err)
	}
	if len(paths) != 0 {
		t.Errorf("Missing folder should list nothing, got %v", paths)
	}

	var written []string
	for i := 0; i < 3; i++ {
		path, err := store.WriteRaw([]byte("{}"))
		if err != nil {
			t.Fatalf("WriteRaw returned error: %v", err)
		}
		written = append(written, path)
	}

	// foreign files in the folder are ignored
	if err := os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	paths, err = store.List()
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("Expected 3 listed files, got %d", len(paths))
	}

	latest, found, err := store.Latest()
	if err != nil || !found {
		t.Fatalf("Latest failed: found=%v err=%v", found, err)
	}
	if latest != paths[len(paths)-1] {
		t.Errorf("Latest should be the last listed file, got %s", latest)
	}
}

// TestStoreRetention tests pruning down to maxFiles
func TestStoreRetention(t *testing.T) {
	store := NewStore(t.TempDir(), "backup", ".dtdb", 2)

	for i := 0; i < 5; i++ {
		if _, err := store.WriteRaw([]byte("{}")); err != nil {
			t.Fatalf("WriteRaw returned error: %v", err)
		}
	}

	paths, err := store.List()
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(paths) != 2 {
		t.Errorf("Retention should keep 2 files, got %d", len(paths))
	}
}

// TestStoreUnlimited tests that maxFiles 0 disables pruning
func TestStoreUnlimited(t *testing.T) {
	store := NewStore(t.TempDir(), "log", ".q", 0)

	for i := 0; i < 4; i++ {
		if _, err := store.WriteRaw([]byte("{}")); err != nil {
			t.Fatalf("WriteRaw returned error: %v", err)
		}
	}

	paths, _ := store.List()
	if len(paths) != 4 {
		t.Errorf("Unlimited store should keep every file, got %d", len(paths))
	}
}
