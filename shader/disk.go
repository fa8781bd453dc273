package shader

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gogpu/ra"
)

// diskCacheHeader versions the on-disk binary format. Files with a
// different header are ignored, which handles format changes and
// truncated writes alike.
const diskCacheHeader = "ra shader cache v1\n"

// diskKey derives the cache filename from the full key text. The
// filename must identify the exact shader, so a cryptographic hash is
// used here, unlike the cheap in-memory short circuit.
func (c *Cache) diskKey(total string) string {
	sum := sha256.Sum256([]byte(total))
	return fmt.Sprintf("%X", sum)
}

// loadCachedProgram returns the stored program binary for key, or nil.
// A missing or malformed file is a plain cache miss.
func (c *Cache) loadCachedProgram(key string) []byte {
	path := filepath.Join(c.cacheDir, key)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	if !bytes.HasPrefix(data, []byte(diskCacheHeader)) {
		ra.Logger().Warn("ignoring shader cache file with bad header", "path", path)
		return nil
	}
	ra.Logger().Debug("loaded cached program binary", "path", path)
	return data[len(diskCacheHeader):]
}

// saveCachedProgram stores a program binary under key. Failures are
// logged and otherwise ignored; the disk cache is an optimization.
func (c *Cache) saveCachedProgram(key string, binary []byte) {
	if err := os.MkdirAll(c.cacheDir, 0o755); err != nil {
		ra.Logger().Warn("cannot create shader cache dir", "dir", c.cacheDir, "err", err)
		return
	}
	path := filepath.Join(c.cacheDir, key)
	data := make([]byte, 0, len(diskCacheHeader)+len(binary))
	data = append(data, diskCacheHeader...)
	data = append(data, binary...)

	// Write-then-rename so a concurrent reader never sees a partial
	// file.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		ra.Logger().Warn("cannot write shader cache file", "path", tmp, "err", err)
		return
	}
	if err := os.Rename(tmp, path); err != nil {
		ra.Logger().Warn("cannot commit shader cache file", "path", path, "err", err)
		os.Remove(tmp)
		return
	}
	ra.Logger().Debug("stored program binary", "path", path, "size", len(binary))
}
