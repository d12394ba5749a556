// aviation/cache.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/mmp/cifp/util"
)

// resultCacheVersion should be incremented whenever the layout of Result
// changes so that stale snapshots aren't used.
const resultCacheVersion = 1

// SaveResult stores a snapshot of r in the cache directory under the
// given name.
func SaveResult(dir, name string, r *Result) error {
	return util.CacheStoreObject(dir, snapshotPath(name), snapshot{Version: resultCacheVersion, Result: r})
}

// LoadResult returns a snapshot stored by SaveResult, along with the time
// that it was stored.
func LoadResult(dir, name string) (*Result, time.Time, error) {
	var s snapshot
	t, err := util.CacheRetrieveObject(dir, snapshotPath(name), &s)
	if err != nil {
		return nil, time.Time{}, err
	}
	if s.Version != resultCacheVersion || s.Result == nil {
		return nil, time.Time{}, fmt.Errorf("%s: stale snapshot version %d", name, s.Version)
	}
	return s.Result, t, nil
}

type snapshot struct {
	Version int
	Result  *Result
}

func snapshotPath(name string) string {
	return "results/" + name + ".msgpack.zst"
}

// SnapshotName returns the cache name for the snapshot of the given
// CIFP file, derived from the file's contents so that a new cycle's data
// doesn't match a stale snapshot.
func SnapshotName(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil))[:16], nil
}

// DecodeFileCached returns the decoded result for the given file,
// using a snapshot from the cache directory if one is available and
// storing one otherwise. Errors from the decode are only reported when
// the file is actually decoded.
func DecodeFileCached(path, cacheDir string, opts Options) (*Result, error) {
	name, err := SnapshotName(path)
	if err != nil {
		return nil, &StreamError{Err: err}
	}

	lg := opts.Logger
	if r, t, err := LoadResult(cacheDir, name); err == nil {
		lg.Info("using cached result", "file", path, "stored", t)
		return r, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		lg.Warn("unable to load cached result", "file", path, "error", err)
	}

	r, err := DecodeFile(path, opts)
	if err != nil {
		return nil, err
	}
	if err := SaveResult(cacheDir, name, r); err != nil {
		lg.Warn("unable to cache result", "file", path, "error", err)
	}
	return r, nil
}
