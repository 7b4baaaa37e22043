package analysis

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultMaxBytes caps how much of a file the classifier sees. The leading
// bytes are enough to tell a shell script from a CSS file.
const DefaultMaxBytes = 4096

// ErrFileRead marks a failure to open or read a file under analysis.
var ErrFileRead = errors.New("analysis: file read failed")

// ReadCapped reads at most maxBytes from the file and returns the content
// as a string with invalid UTF-8 sequences replaced. maxBytes <= 0 selects
// DefaultMaxBytes. Failures wrap ErrFileRead.
func ReadCapped(path string, maxBytes int64) (string, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFileRead, err)
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, maxBytes))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFileRead, err)
	}
	return strings.ToValidUTF8(string(raw), "�"), nil
}
