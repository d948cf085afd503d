package batch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/sirupsen/logrus"
)

// ErrNoImages is returned when the inputs expand to no image files.
var ErrNoImages = errors.New("no image files found")

//nolint:gochecknoglobals // immutable lookup tables used across the package.
var (
	imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp", ".tif", ".tiff"}

	skipDirs = []string{
		".git",
		"node_modules",
		"vendor",
		"__pycache__",
		".cache",
	}
)

// IsImagePath reports whether path has a supported image extension.
func IsImagePath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range imageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

func isSkippedDir(name string) bool {
	if len(name) > 1 && strings.HasPrefix(name, ".") {
		return true
	}
	for _, s := range skipDirs {
		if strings.EqualFold(name, s) {
			return true
		}
	}
	return false
}

// ExpandPath expands a leading tilde and environment variables.
func ExpandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[1:])
	}
	path = os.ExpandEnv(path)
	return filepath.Clean(path), nil
}

// ExpandInputs resolves command arguments into a list of image files. Files are
// kept in argument order whatever their extension; directories are walked and
// contribute their images sorted by path. Duplicates are dropped.
func ExpandInputs(ctx context.Context, args []string) ([]string, error) {
	var out []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}

	for _, arg := range args {
		p, err := ExpandPath(arg)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("input %s: %w", arg, err)
		}
		if !info.IsDir() {
			add(p)
			continue
		}
		found, err := walkImages(ctx, p)
		if err != nil {
			return nil, err
		}
		logrus.Debugf("found %d images under %s", len(found), p)
		for _, f := range found {
			add(f)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoImages
	}
	return out, nil
}

// walkImages returns image files under root sorted by path. fastwalk visits
// entries concurrently so results are collected under a lock and sorted.
func walkImages(ctx context.Context, root string) ([]string, error) {
	var (
		mu    sync.Mutex
		found []string
	)
	conf := fastwalk.DefaultConfig
	err := fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip unreadable entries.
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if d.IsDir() {
			if path != root && isSkippedDir(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}
		if IsImagePath(path) {
			mu.Lock()
			found = append(found, path)
			mu.Unlock()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(found)
	return found, nil
}
