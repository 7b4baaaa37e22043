package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/o2alexanderfedin/RecreateDocsFromRepo-sub000/internal/domain"
)

func TestDefaultWarmup(t *testing.T) {
	entries := DefaultWarmup()
	if len(entries) != 5 {
		t.Fatalf("expected 5 seed records, got %d", len(entries))
	}
	for key, value := range entries {
		if !value.FileType.IsValid() {
			t.Errorf("warmup entry %q has invalid file type %q", key, value.FileType)
		}
		if value.Confidence <= 0 {
			t.Errorf("warmup entry %q has no confidence", key)
		}
	}
	if entries["python_script"].Language != "python" {
		t.Fatalf("unexpected python_script record: %+v", entries["python_script"])
	}
}

func TestLoadWarmupFile_MergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "warmup.json")
	payload := `{
		"python_script": {"file_type": "code", "language": "python", "purpose": "cli entry point", "characteristics": ["argparse"], "confidence": 0.99},
		"go_module": {"file_type": "code", "language": "go", "purpose": "module", "characteristics": ["packages"], "confidence": 0.95}
	}`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write warmup file: %v", err)
	}

	merged, err := LoadWarmupFile(path)
	if err != nil {
		t.Fatalf("LoadWarmupFile failed: %v", err)
	}
	if len(merged) != 6 {
		t.Fatalf("expected 5 defaults + 1 new entry, got %d", len(merged))
	}
	// The user record wins over the default on collision.
	if merged["python_script"].Purpose != "cli entry point" {
		t.Fatalf("user entry should override default: %+v", merged["python_script"])
	}
	if merged["go_module"].Language != "go" {
		t.Fatalf("new user entry missing: %+v", merged)
	}
	if merged["markdown_doc"].FileType != domain.FileTypeDocumentation {
		t.Fatalf("untouched default missing: %+v", merged)
	}
}

func TestLoadWarmupFile_Errors(t *testing.T) {
	if _, err := LoadWarmupFile(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing file")
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(bad, []byte("{broken"), 0o644)
	if _, err := LoadWarmupFile(bad); err == nil {
		t.Fatal("expected error for malformed file")
	}
}
