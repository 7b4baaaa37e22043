// Package output renders scan results and cache statistics for the CLIs.
// JSON and YAML serialize structures as-is; table and wide render aligned
// human-readable views.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// Format represents output format
type Format string

const (
	FormatTable Format = "table"
	FormatWide  Format = "wide"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat parses a format string
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON
	case "yaml", "yml":
		return FormatYAML
	case "wide":
		return FormatWide
	default:
		return FormatTable
	}
}

// Printer handles formatted output
type Printer struct {
	format  Format
	writer  io.Writer
	noColor bool
}

// NewPrinter creates a new printer
func NewPrinter(format Format) *Printer {
	return &Printer{
		format:  format,
		writer:  os.Stdout,
		noColor: os.Getenv("NO_COLOR") != "",
	}
}

// SetWriter sets the output writer
func (p *Printer) SetWriter(w io.Writer) {
	p.writer = w
}

// Print outputs data in the configured format
func (p *Printer) Print(data interface{}) error {
	switch p.format {
	case FormatJSON:
		return p.printJSON(data)
	case FormatYAML:
		return p.printYAML(data)
	default:
		// Table and Wide are handled by specific methods
		return p.printJSON(data)
	}
}

func (p *Printer) printJSON(data interface{}) error {
	enc := json.NewEncoder(p.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func (p *Printer) printYAML(data interface{}) error {
	enc := yaml.NewEncoder(p.writer)
	enc.SetIndent(2)
	return enc.Encode(data)
}

// Color codes
const (
	Reset   = "\033[0m"
	Bold    = "\033[1m"
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	Gray    = "\033[90m"
)

// Colorize adds color to text
func (p *Printer) Colorize(color, text string) string {
	if p.noColor {
		return text
	}
	return color + text + Reset
}

// TableWriter creates a tabwriter for aligned output
func (p *Printer) TableWriter() *tabwriter.Writer {
	return tabwriter.NewWriter(p.writer, 0, 0, 2, ' ', 0)
}

// FileRow represents one analyzed file in table output
type FileRow struct {
	Path            string   `json:"path" yaml:"path"`
	FileType        string   `json:"file_type" yaml:"file_type"`
	Language        string   `json:"language" yaml:"language"`
	Purpose         string   `json:"purpose" yaml:"purpose"`
	Confidence      float64  `json:"confidence" yaml:"confidence"`
	Characteristics []string `json:"characteristics,omitempty" yaml:"characteristics,omitempty"`
	Error           string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// PrintFiles prints per-file analysis results
func (p *Printer) PrintFiles(rows []FileRow) error {
	if p.format == FormatJSON || p.format == FormatYAML {
		return p.Print(rows)
	}

	if len(rows) == 0 {
		fmt.Fprintln(p.writer, "No files analyzed")
		return nil
	}

	w := p.TableWriter()

	// Header
	if p.format == FormatWide {
		fmt.Fprintln(w, p.Colorize(Bold, "PATH\tTYPE\tLANGUAGE\tPURPOSE\tCONF\tCHARACTERISTICS\tERROR"))
	} else {
		fmt.Fprintln(w, p.Colorize(Bold, "PATH\tTYPE\tLANGUAGE\tCONF"))
	}

	for _, row := range rows {
		errText := row.Error
		if errText != "" {
			errText = p.Colorize(Red, errText)
		}
		if p.format == FormatWide {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\t%s\t%s\n",
				p.Colorize(Cyan, row.Path),
				row.FileType,
				row.Language,
				row.Purpose,
				row.Confidence,
				strings.Join(row.Characteristics, ","),
				errText,
			)
		} else {
			fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\n",
				p.Colorize(Cyan, row.Path),
				row.FileType,
				row.Language,
				row.Confidence,
			)
		}
	}

	return w.Flush()
}

// CacheSession summarizes analyzer cache activity during one scan
type CacheSession struct {
	Hits   uint64 `json:"hits" yaml:"hits"`
	Misses uint64 `json:"misses" yaml:"misses"`
	Stores uint64 `json:"stores" yaml:"stores"`
}

// ScanSummary represents the aggregate view of one scan
type ScanSummary struct {
	ScanID        string         `json:"scan_id" yaml:"scan_id"`
	Repository    string         `json:"repository" yaml:"repository"`
	TotalFiles    int            `json:"total_files" yaml:"total_files"`
	AnalyzedFiles int            `json:"analyzed_files" yaml:"analyzed_files"`
	ExcludedFiles int            `json:"excluded_files" yaml:"excluded_files"`
	ErrorFiles    int            `json:"error_files" yaml:"error_files"`
	DurationMs    int64          `json:"duration_ms" yaml:"duration_ms"`
	FileTypes     map[string]int `json:"file_types" yaml:"file_types"`
	Languages     map[string]int `json:"languages" yaml:"languages"`
	Cache         *CacheSession  `json:"cache,omitempty" yaml:"cache,omitempty"`
}

// PrintScanSummary prints the scan summary
func (p *Printer) PrintScanSummary(sum ScanSummary) error {
	if p.format == FormatJSON || p.format == FormatYAML {
		return p.Print(sum)
	}

	// Human-readable format
	fmt.Fprintf(p.writer, "%s %s\n", p.Colorize(Bold, "Scan:"), p.Colorize(Cyan, sum.ScanID))
	fmt.Fprintf(p.writer, "  %s %s\n", p.Colorize(Gray, "Repository:"), sum.Repository)
	fmt.Fprintf(p.writer, "  %s %d\n", p.Colorize(Gray, "Total Files:"), sum.TotalFiles)
	fmt.Fprintf(p.writer, "  %s %d\n", p.Colorize(Gray, "Analyzed:"), sum.AnalyzedFiles)
	fmt.Fprintf(p.writer, "  %s %d\n", p.Colorize(Gray, "Excluded:"), sum.ExcludedFiles)

	if sum.ErrorFiles > 0 {
		fmt.Fprintf(p.writer, "  %s %s\n", p.Colorize(Gray, "Errors:"), p.Colorize(Red, fmt.Sprintf("%d", sum.ErrorFiles)))
	} else {
		fmt.Fprintf(p.writer, "  %s 0\n", p.Colorize(Gray, "Errors:"))
	}

	fmt.Fprintf(p.writer, "  %s %d ms\n", p.Colorize(Gray, "Duration:"), sum.DurationMs)

	if sum.Cache != nil {
		fmt.Fprintf(p.writer, "  %s %d hits, %d misses, %d stores\n",
			p.Colorize(Gray, "Cache:"), sum.Cache.Hits, sum.Cache.Misses, sum.Cache.Stores)
	}

	if len(sum.FileTypes) > 0 {
		fmt.Fprintf(p.writer, "  %s\n", p.Colorize(Gray, "File Types:"))
		for _, e := range sortedByCount(sum.FileTypes) {
			fmt.Fprintf(p.writer, "    %s: %d\n", e.Name, e.Count)
		}
	}
	if len(sum.Languages) > 0 {
		fmt.Fprintf(p.writer, "  %s\n", p.Colorize(Gray, "Languages:"))
		for _, e := range sortedByCount(sum.Languages) {
			fmt.Fprintf(p.writer, "    %s: %d\n", e.Name, e.Count)
		}
	}

	return nil
}

// TierRow represents one cache tier in stats output
type TierRow struct {
	Tier        string  `json:"tier" yaml:"tier"`
	Size        int     `json:"size" yaml:"size"`
	MaxSize     int     `json:"max_size,omitempty" yaml:"max_size,omitempty"`
	Hits        uint64  `json:"hits" yaml:"hits"`
	Misses      uint64  `json:"misses" yaml:"misses"`
	HitRate     float64 `json:"hit_rate" yaml:"hit_rate"`
	Sets        uint64  `json:"sets" yaml:"sets"`
	Evictions   uint64  `json:"evictions" yaml:"evictions"`
	Expirations uint64  `json:"expirations" yaml:"expirations"`
	TTL         string  `json:"ttl,omitempty" yaml:"ttl,omitempty"`
	Location    string  `json:"location,omitempty" yaml:"location,omitempty"`
}

// PrintTierStats prints per-tier cache statistics
func (p *Printer) PrintTierStats(rows []TierRow) error {
	if p.format == FormatJSON || p.format == FormatYAML {
		return p.Print(rows)
	}

	if len(rows) == 0 {
		fmt.Fprintln(p.writer, "No cache tiers configured")
		return nil
	}

	w := p.TableWriter()

	// Header
	if p.format == FormatWide {
		fmt.Fprintln(w, p.Colorize(Bold, "TIER\tSIZE\tHITS\tMISSES\tHIT RATE\tSETS\tEVICTIONS\tEXPIRED\tTTL\tLOCATION"))
	} else {
		fmt.Fprintln(w, p.Colorize(Bold, "TIER\tSIZE\tHITS\tMISSES\tHIT RATE"))
	}

	for _, row := range rows {
		size := fmt.Sprintf("%d", row.Size)
		if row.MaxSize > 0 {
			size = fmt.Sprintf("%d/%d", row.Size, row.MaxSize)
		}
		rate := fmt.Sprintf("%.1f%%", row.HitRate*100)

		if p.format == FormatWide {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%d\t%d\t%d\t%s\t%s\n",
				p.Colorize(Cyan, row.Tier),
				size,
				row.Hits,
				row.Misses,
				rate,
				row.Sets,
				row.Evictions,
				row.Expirations,
				row.TTL,
				row.Location,
			)
		} else {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
				p.Colorize(Cyan, row.Tier),
				size,
				row.Hits,
				row.Misses,
				rate,
			)
		}
	}

	return w.Flush()
}

type countEntry struct {
	Name  string
	Count int
}

// sortedByCount orders breakdown entries by count descending, ties by name.
func sortedByCount(m map[string]int) []countEntry {
	entries := make([]countEntry, 0, len(m))
	for name, count := range m {
		entries = append(entries, countEntry{Name: name, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Name < entries[j].Name
	})
	return entries
}

// Success prints a success message
func (p *Printer) Success(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(p.writer, p.Colorize(Green, "✓ ")+msg)
}

// Error prints an error message
func (p *Printer) Error(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(p.writer, p.Colorize(Red, "✗ ")+msg)
}

// Warning prints a warning message
func (p *Printer) Warning(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(p.writer, p.Colorize(Yellow, "⚠ ")+msg)
}

// Info prints an info message
func (p *Printer) Info(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(p.writer, p.Colorize(Blue, "ℹ ")+msg)
}
