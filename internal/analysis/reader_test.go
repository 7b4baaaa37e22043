package analysis

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadCapped_TruncatesAtLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.txt")
	if err := os.WriteFile(path, []byte(strings.Repeat("x", 100)), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := ReadCapped(path, 10)
	if err != nil {
		t.Fatalf("ReadCapped: %v", err)
	}
	if len(got) != 10 {
		t.Fatalf("read %d bytes, want 10", len(got))
	}
}

func TestReadCapped_MissingFileWrapsErrFileRead(t *testing.T) {
	_, err := ReadCapped(filepath.Join(t.TempDir(), "nope.txt"), 0)
	if !errors.Is(err, ErrFileRead) {
		t.Fatalf("error = %v, want ErrFileRead", err)
	}
}

func TestReadCapped_ReplacesInvalidUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mixed.bin")
	if err := os.WriteFile(path, []byte{0xff, 'o', 'k'}, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := ReadCapped(path, 0)
	if err != nil {
		t.Fatalf("ReadCapped: %v", err)
	}
	if !strings.HasPrefix(got, "�") || !strings.HasSuffix(got, "ok") {
		t.Fatalf("got %q, want replacement rune followed by ok", got)
	}
}
