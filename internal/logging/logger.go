package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// FileLog represents a single file analysis audit entry
type FileLog struct {
	Timestamp  time.Time `json:"timestamp"`
	ScanID     string    `json:"scan_id"`
	Path       string    `json:"path"`
	FileType   string    `json:"file_type,omitempty"`
	Language   string    `json:"language,omitempty"`
	Confidence float64   `json:"confidence,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
}

// Logger handles per-file audit logging
type Logger struct {
	mu      sync.Mutex
	enabled bool
	file    *os.File
	console bool
}

var defaultLogger = &Logger{enabled: true}

// Default returns the default audit logger. Console output starts
// disabled; scans enable it for verbose runs.
func Default() *Logger {
	return defaultLogger
}

// SetOutput sets the audit log file (one JSON entry per line)
func (l *Logger) SetOutput(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		l.file.Close()
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	l.file = f
	return nil
}

// SetConsole enables/disables console output
func (l *Logger) SetConsole(enabled bool) {
	l.mu.Lock()
	l.console = enabled
	l.mu.Unlock()
}

// Log writes a file audit entry
func (l *Logger) Log(entry *FileLog) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled {
		return
	}

	entry.Timestamp = time.Now()

	// Console output (human-readable)
	if l.console {
		status := "✓"
		if !entry.Success {
			status = "✗"
		}
		class := ""
		if entry.FileType != "" {
			class = fmt.Sprintf(" %s/%s", entry.FileType, entry.Language)
		}
		fmt.Fprintf(os.Stderr, "[scan] %s %s%s %dms\n",
			status, entry.Path, class, entry.DurationMs)
		if entry.Error != "" {
			fmt.Fprintf(os.Stderr, "[scan]   error: %s\n", entry.Error)
		}
	}

	// File output (JSON)
	if l.file != nil {
		data, _ := json.Marshal(entry)
		l.file.Write(append(data, '\n'))
	}
}

// Close closes the audit log file
func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
}
