package scanner

import (
	"time"

	"github.com/o2alexanderfedin/RecreateDocsFromRepo-sub000/internal/domain"
)

// Result is the outcome of one repository scan.
type Result struct {
	ScanID     string                     `json:"scan_id" yaml:"scan_id"`
	Repository string                     `json:"repository" yaml:"repository"`
	Results    map[string]domain.Analysis `json:"analysis_results" yaml:"analysis_results"`
	Stats      Statistics                 `json:"statistics" yaml:"statistics"`
}

// Statistics aggregates one scan. TotalFiles always equals AnalyzedFiles
// plus ExcludedFiles, and the FileTypes and Languages maps each sum to
// AnalyzedFiles, since every analyzed file lands in exactly one bucket
// of each.
type Statistics struct {
	TotalFiles     int            `json:"total_files" yaml:"total_files"`
	AnalyzedFiles  int            `json:"analyzed_files" yaml:"analyzed_files"`
	ExcludedFiles  int            `json:"excluded_files" yaml:"excluded_files"`
	ErrorFiles     int            `json:"error_files" yaml:"error_files"`
	FileTypes      map[string]int `json:"file_types" yaml:"file_types"`
	Languages      map[string]int `json:"languages" yaml:"languages"`
	ProcessingTime time.Duration  `json:"processing_time" yaml:"processing_time"`
}

// tally folds the per-file records into the type and language counts.
func (st *Statistics) tally(results map[string]domain.Analysis) {
	for _, res := range results {
		st.FileTypes[string(res.FileType)]++
		st.Languages[res.Language]++
	}
}
