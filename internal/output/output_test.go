package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	cases := []struct {
		in   string
		want Format
	}{
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{"yaml", FormatYAML},
		{"yml", FormatYAML},
		{"wide", FormatWide},
		{"table", FormatTable},
		{"nonsense", FormatTable},
	}
	for _, c := range cases {
		if got := ParseFormat(c.in); got != c.want {
			t.Fatalf("ParseFormat(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func newTestPrinter(t *testing.T, format Format) (*Printer, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	p := NewPrinter(format)
	var buf bytes.Buffer
	p.SetWriter(&buf)
	return p, &buf
}

func TestPrinter_PrintFilesTable(t *testing.T) {
	p, buf := newTestPrinter(t, FormatTable)

	rows := []FileRow{
		{Path: "src/app.py", FileType: "code", Language: "python", Purpose: "implementation", Confidence: 0.9},
		{Path: "README.md", FileType: "documentation", Language: "markdown", Purpose: "documentation", Confidence: 0.9},
	}
	if err := p.PrintFiles(rows); err != nil {
		t.Fatalf("PrintFiles: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"PATH", "LANGUAGE", "src/app.py", "python", "README.md", "0.90"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "PURPOSE") {
		t.Fatalf("table format printed wide-only column:\n%s", out)
	}
}

func TestPrinter_PrintFilesWideIncludesError(t *testing.T) {
	p, buf := newTestPrinter(t, FormatWide)

	rows := []FileRow{
		{Path: "bad.py", FileType: "unknown", Language: "unknown", Purpose: "unknown", Error: "read failed"},
	}
	if err := p.PrintFiles(rows); err != nil {
		t.Fatalf("PrintFiles: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "PURPOSE") || !strings.Contains(out, "read failed") {
		t.Fatalf("wide output missing columns:\n%s", out)
	}
}

func TestPrinter_PrintFilesJSON(t *testing.T) {
	p, buf := newTestPrinter(t, FormatJSON)

	rows := []FileRow{{Path: "a.py", FileType: "code", Language: "python", Confidence: 0.9}}
	if err := p.PrintFiles(rows); err != nil {
		t.Fatalf("PrintFiles: %v", err)
	}

	var decoded []FileRow
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("json output did not decode: %v\n%s", err, buf.String())
	}
	if len(decoded) != 1 || decoded[0].Path != "a.py" {
		t.Fatalf("unexpected decoded rows: %+v", decoded)
	}
}

func TestPrinter_PrintFilesEmpty(t *testing.T) {
	p, buf := newTestPrinter(t, FormatTable)

	if err := p.PrintFiles(nil); err != nil {
		t.Fatalf("PrintFiles: %v", err)
	}
	if !strings.Contains(buf.String(), "No files analyzed") {
		t.Fatalf("expected empty notice, got:\n%s", buf.String())
	}
}

func TestPrinter_ScanSummaryBreakdownsSorted(t *testing.T) {
	p, buf := newTestPrinter(t, FormatTable)

	sum := ScanSummary{
		ScanID:        "scan-1",
		Repository:    "/repo",
		TotalFiles:    7,
		AnalyzedFiles: 7,
		FileTypes:     map[string]int{"documentation": 1, "code": 3, "configuration": 3},
		Languages:     map[string]int{"python": 4, "markdown": 1, "yaml": 2},
	}
	if err := p.PrintScanSummary(sum); err != nil {
		t.Fatalf("PrintScanSummary: %v", err)
	}

	out := buf.String()
	code := strings.Index(out, "code: 3")
	conf := strings.Index(out, "configuration: 3")
	docs := strings.Index(out, "documentation: 1")
	if code < 0 || conf < 0 || docs < 0 {
		t.Fatalf("breakdown entries missing:\n%s", out)
	}
	// Equal counts order by name, lower counts come last.
	if !(code < conf && conf < docs) {
		t.Fatalf("breakdown out of order (code=%d conf=%d docs=%d):\n%s", code, conf, docs, out)
	}
	py := strings.Index(out, "python: 4")
	yml := strings.Index(out, "yaml: 2")
	if py < 0 || yml < 0 || py > yml {
		t.Fatalf("language breakdown out of order:\n%s", out)
	}
}

func TestPrinter_ScanSummaryShowsCacheSession(t *testing.T) {
	p, buf := newTestPrinter(t, FormatTable)

	sum := ScanSummary{ScanID: "scan-2", Cache: &CacheSession{Hits: 5, Misses: 2, Stores: 2}}
	if err := p.PrintScanSummary(sum); err != nil {
		t.Fatalf("PrintScanSummary: %v", err)
	}
	if !strings.Contains(buf.String(), "5 hits, 2 misses, 2 stores") {
		t.Fatalf("cache session line missing:\n%s", buf.String())
	}
}

func TestPrinter_PrintTierStats(t *testing.T) {
	p, buf := newTestPrinter(t, FormatTable)

	rows := []TierRow{
		{Tier: "cache_0", Size: 3, MaxSize: 100, Hits: 3, Misses: 1, HitRate: 0.75},
		{Tier: "cache_1", Size: 42, Hits: 1, Misses: 3, HitRate: 0.25, Location: "/tmp/cache.db"},
	}
	if err := p.PrintTierStats(rows); err != nil {
		t.Fatalf("PrintTierStats: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"TIER", "cache_0", "3/100", "75.0%", "cache_1", "25.0%"} {
		if !strings.Contains(out, want) {
			t.Fatalf("stats output missing %q:\n%s", want, out)
		}
	}
	// Location is wide-only.
	if strings.Contains(out, "/tmp/cache.db") {
		t.Fatalf("table format printed wide-only column:\n%s", out)
	}
}

func TestPrinter_PrintTierStatsEmpty(t *testing.T) {
	p, buf := newTestPrinter(t, FormatTable)

	if err := p.PrintTierStats(nil); err != nil {
		t.Fatalf("PrintTierStats: %v", err)
	}
	if !strings.Contains(buf.String(), "No cache tiers configured") {
		t.Fatalf("expected empty notice, got:\n%s", buf.String())
	}
}

func TestPrinter_ColorizeRespectsNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	plain := NewPrinter(FormatTable)
	if got := plain.Colorize(Red, "boom"); got != "boom" {
		t.Fatalf("NO_COLOR set: got %q", got)
	}

	t.Setenv("NO_COLOR", "")
	colored := NewPrinter(FormatTable)
	if got := colored.Colorize(Red, "boom"); got != Red+"boom"+Reset {
		t.Fatalf("color expected: got %q", got)
	}
}
