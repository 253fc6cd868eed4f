// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
)

// CopyTree replaces dst with a copy of src.
func CopyTree(src, dst string) error {
	_ = os.RemoveAll(dst)
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		out := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(out, 0o755)
		}
		b, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		return os.WriteFile(out, b, 0o644)
	})
}

// Env returns the build parameters of a minimal valid run, with extra
// key/value pairs applied on top.
func Env(kv ...string) map[string]string {
	m := map[string]string{
		"BUILDFACTS_PKG_NAME":    "demo",
		"BUILDFACTS_PKG_VERSION": "1.2.3",
		"BUILDFACTS_TARGET":      "x86_64-unknown-linux-gnu",
	}
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i]] = kv[i+1]
	}
	return m
}
