package domain

import (
	"encoding/json"
	"testing"
)

func TestFileTypeIsValid(t *testing.T) {
	valid := []FileType{
		FileTypeCode, FileTypeDocumentation, FileTypeConfiguration,
		FileTypeMarkup, FileTypeText, FileTypeData, FileTypeUnknown,
	}
	for _, ft := range valid {
		if !ft.IsValid() {
			t.Errorf("expected %q to be valid", ft)
		}
	}
	if FileType("binary").IsValid() {
		t.Error("expected unrecognized file type to be invalid")
	}
}

func TestErrorAnalysis(t *testing.T) {
	a := ErrorAnalysis("read failed: permission denied")
	if a.FileType != FileTypeUnknown || a.Language != "unknown" || a.Purpose != "unknown" {
		t.Fatalf("sentinel fields not set: %+v", a)
	}
	if a.Confidence != 0 {
		t.Fatalf("sentinel confidence = %v, want 0", a.Confidence)
	}
	if a.Characteristics == nil || len(a.Characteristics) != 0 {
		t.Fatalf("sentinel characteristics = %v, want empty slice", a.Characteristics)
	}
	if !a.IsError() {
		t.Fatal("sentinel should report IsError")
	}
	if (Analysis{FileType: FileTypeCode}).IsError() {
		t.Fatal("ordinary record should not report IsError")
	}
}

func TestAnalysisBinaryRoundTrip(t *testing.T) {
	in := Analysis{
		FileType:        FileTypeCode,
		Language:        "go",
		Purpose:         "implementation",
		Characteristics: []string{"functions", "imports"},
		Confidence:      0.9,
	}
	raw, err := in.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var wire map[string]any
	if err := json.Unmarshal(raw, &wire); err != nil {
		t.Fatalf("unmarshal wire form: %v", err)
	}
	if wire["file_type"] != "code" {
		t.Fatalf("wire file_type = %v, want code", wire["file_type"])
	}
	var out Analysis
	if err := out.UnmarshalBinary(raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Language != in.Language || out.Confidence != in.Confidence {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}
