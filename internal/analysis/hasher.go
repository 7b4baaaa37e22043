package analysis

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
)

// HashFile returns the SHA-256 hex digest of a file's content. Two files
// with identical bytes hash to the same key regardless of where they live,
// which is what lets the cache serve one analysis for both.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// CacheKey returns the cache key for a file. When the content cannot be
// read it falls back to hashing the path string, so unreadable files still
// get a stable key instead of failing the lookup.
func CacheKey(path string) string {
	sum, err := HashFile(path)
	if err != nil {
		h := sha256.Sum256([]byte(path))
		return hex.EncodeToString(h[:])
	}
	return sum
}
