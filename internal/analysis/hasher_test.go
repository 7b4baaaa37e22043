package analysis

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHashFile_IdenticalContentSharesDigest(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.py")
	b := filepath.Join(dir, "b.py")
	for _, p := range []string{a, b} {
		if err := os.WriteFile(p, []byte("import os\n"), 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}

	ha, err := HashFile(a)
	if err != nil {
		t.Fatalf("HashFile(a): %v", err)
	}
	hb, err := HashFile(b)
	if err != nil {
		t.Fatalf("HashFile(b): %v", err)
	}
	if ha != hb {
		t.Fatalf("digests differ for identical content: %s vs %s", ha, hb)
	}
	if len(ha) != 64 {
		t.Fatalf("digest length = %d, want 64", len(ha))
	}

	if err := os.WriteFile(b, []byte("import sys\n"), 0o644); err != nil {
		t.Fatalf("rewrite b: %v", err)
	}
	hb2, err := HashFile(b)
	if err != nil {
		t.Fatalf("HashFile(b) after rewrite: %v", err)
	}
	if hb2 == ha {
		t.Fatal("digest unchanged after content changed")
	}
}

func TestCacheKey_FallsBackToPathHash(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.py")

	k1 := CacheKey(missing)
	k2 := CacheKey(missing)
	if k1 == "" || len(k1) != 64 {
		t.Fatalf("fallback key = %q, want 64 hex chars", k1)
	}
	if k1 != k2 {
		t.Fatalf("fallback key not stable: %s vs %s", k1, k2)
	}
	if other := CacheKey(missing + "x"); other == k1 {
		t.Fatal("different paths produced the same fallback key")
	}
}
