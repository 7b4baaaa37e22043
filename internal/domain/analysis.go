// Package domain holds the value types shared across the scanner, the
// analyzer, and the cache tiers. It depends on nothing else in this module.
package domain

import "encoding/json"

// FileType classifies what kind of content a file holds.
type FileType string

const (
	FileTypeCode          FileType = "code"
	FileTypeDocumentation FileType = "documentation"
	FileTypeConfiguration FileType = "configuration"
	FileTypeMarkup        FileType = "markup"
	FileTypeText          FileType = "text"
	FileTypeData          FileType = "data"
	FileTypeUnknown       FileType = "unknown"
)

func (t FileType) IsValid() bool {
	switch t {
	case FileTypeCode, FileTypeDocumentation, FileTypeConfiguration,
		FileTypeMarkup, FileTypeText, FileTypeData, FileTypeUnknown:
		return true
	}
	return false
}

// Analysis is the classification record produced for a single file. It is
// the unit every cache tier stores and every scan aggregates.
type Analysis struct {
	FileType        FileType `json:"file_type" yaml:"file_type"`
	Language        string   `json:"language" yaml:"language"`
	Purpose         string   `json:"purpose" yaml:"purpose"`
	Characteristics []string `json:"characteristics" yaml:"characteristics"`
	Confidence      float64  `json:"confidence" yaml:"confidence"`
	Error           string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// IsError reports whether the record marks a failed analysis.
func (a Analysis) IsError() bool { return a.Error != "" }

// ErrorAnalysis builds the sentinel record stored when a file cannot be
// analyzed. The scan keeps going; the failure stays visible in the results.
func ErrorAnalysis(msg string) Analysis {
	return Analysis{
		FileType:        FileTypeUnknown,
		Language:        "unknown",
		Purpose:         "unknown",
		Characteristics: []string{},
		Confidence:      0,
		Error:           msg,
	}
}

func (a *Analysis) MarshalBinary() ([]byte, error) {
	return json.Marshal(a)
}

func (a *Analysis) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, a)
}
