package analysis

import (
	"strings"

	"github.com/o2alexanderfedin/RecreateDocsFromRepo-sub000/internal/domain"
)

// Classifier produces a classification record from a file's path and its
// leading content.
type Classifier interface {
	Classify(path string, content string) domain.Analysis
}

// HeuristicClassifier classifies files from well-known extensions and
// filenames. Matching is substring-based against the lowercased path, so
// a name like "setup.py.orig" still reads as python.
type HeuristicClassifier struct{}

func (HeuristicClassifier) Classify(path string, content string) domain.Analysis {
	p := strings.ToLower(path)

	switch {
	case strings.Contains(p, ".py"):
		return domain.Analysis{
			FileType:        domain.FileTypeCode,
			Language:        "python",
			Purpose:         "implementation",
			Characteristics: []string{"functions", "classes", "module"},
			Confidence:      0.9,
		}
	case strings.Contains(p, ".js") && !strings.Contains(p, ".json"):
		return domain.Analysis{
			FileType:        domain.FileTypeCode,
			Language:        "javascript",
			Purpose:         "implementation",
			Characteristics: []string{"functions", "module"},
			Confidence:      0.9,
		}
	case strings.Contains(p, ".json"):
		return domain.Analysis{
			FileType:        domain.FileTypeCode,
			Language:        "json",
			Purpose:         "configuration",
			Characteristics: []string{"settings", "data"},
			Confidence:      0.9,
		}
	case strings.Contains(p, ".md"):
		return domain.Analysis{
			FileType:        domain.FileTypeDocumentation,
			Language:        "markdown",
			Purpose:         "documentation",
			Characteristics: []string{"text", "formatting"},
			Confidence:      0.9,
		}
	case strings.Contains(p, ".yml") || strings.Contains(p, ".yaml"):
		return domain.Analysis{
			FileType:        domain.FileTypeConfiguration,
			Language:        "yaml",
			Purpose:         "configuration",
			Characteristics: []string{"settings", "environment"},
			Confidence:      0.9,
		}
	case strings.Contains(p, ".html"):
		return domain.Analysis{
			FileType:        domain.FileTypeMarkup,
			Language:        "html",
			Purpose:         "user interface",
			Characteristics: []string{"markup", "structure"},
			Confidence:      0.9,
		}
	case strings.Contains(p, ".css"):
		return domain.Analysis{
			FileType:        domain.FileTypeCode,
			Language:        "css",
			Purpose:         "styling",
			Characteristics: []string{"styles", "presentation"},
			Confidence:      0.9,
		}
	case strings.Contains(p, ".sh"):
		return domain.Analysis{
			FileType:        domain.FileTypeCode,
			Language:        "shell",
			Purpose:         "automation",
			Characteristics: []string{"commands", "script"},
			Confidence:      0.9,
		}
	case strings.Contains(p, "requirements.txt"):
		return domain.Analysis{
			FileType:        domain.FileTypeConfiguration,
			Language:        "text",
			Purpose:         "dependencies",
			Characteristics: []string{"packages", "dependencies"},
			Confidence:      0.9,
		}
	case strings.Contains(p, ".toml"):
		return domain.Analysis{
			FileType:        domain.FileTypeConfiguration,
			Language:        "toml",
			Purpose:         "project configuration",
			Characteristics: []string{"settings", "metadata"},
			Confidence:      0.9,
		}
	}

	characteristic := "text"
	if strings.ContainsRune(content, 0) {
		characteristic = "binary"
	}
	return domain.Analysis{
		FileType:        domain.FileTypeUnknown,
		Language:        "unknown",
		Purpose:         "unknown",
		Characteristics: []string{characteristic},
		Confidence:      0.5,
	}
}
