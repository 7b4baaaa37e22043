package cache

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/o2alexanderfedin/RecreateDocsFromRepo-sub000/internal/domain"
)

// DefaultWarmup returns seed records for common file classes, so a fresh
// cache answers typical lookups before any analysis has run.
func DefaultWarmup() map[string]domain.Analysis {
	return map[string]domain.Analysis{
		"python_script": {
			FileType:        domain.FileTypeCode,
			Language:        "python",
			Purpose:         "script",
			Characteristics: []string{"executable", "imports", "procedural"},
			Confidence:      0.95,
		},
		"markdown_doc": {
			FileType:        domain.FileTypeDocumentation,
			Language:        "markdown",
			Purpose:         "documentation",
			Characteristics: []string{"formatted text", "headings", "lists"},
			Confidence:      0.95,
		},
		"json_config": {
			FileType:        domain.FileTypeConfiguration,
			Language:        "json",
			Purpose:         "settings",
			Characteristics: []string{"structured data", "key-value pairs"},
			Confidence:      0.95,
		},
		"text_file": {
			FileType:        domain.FileTypeText,
			Language:        "plaintext",
			Purpose:         "documentation",
			Characteristics: []string{"unformatted text"},
			Confidence:      0.90,
		},
		"javascript_module": {
			FileType:        domain.FileTypeCode,
			Language:        "javascript",
			Purpose:         "module",
			Characteristics: []string{"imports", "exports", "functions"},
			Confidence:      0.95,
		},
	}
}

// LoadWarmupFile merges entries from a user-provided JSON file over the
// defaults. User entries win on key collision.
func LoadWarmupFile(path string) (map[string]domain.Analysis, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read warmup file: %w", err)
	}
	var user map[string]domain.Analysis
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("parse warmup file: %w", err)
	}
	merged := DefaultWarmup()
	for key, value := range user {
		merged[key] = value
	}
	return merged, nil
}
