package server

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Static errors for request path confinement.
var (
	// ErrPathOutsideRoot is returned when a path resolves outside its allowed directory.
	ErrPathOutsideRoot = errors.New("path is outside the allowed directory")
	// ErrAbsolutePath is returned for absolute output_dir values.
	ErrAbsolutePath = errors.New("path must be relative")
	// ErrNoRoot is returned when local paths are requested but no root is configured.
	ErrNoRoot = errors.New("local paths are not enabled")
)

// resolveInput maps a client file_path onto root. Relative paths are joined
// to root; absolute paths are accepted only when they already lie inside it.
func resolveInput(root, p string) (string, error) {
	if root == "" {
		return "", ErrNoRoot
	}
	target := p
	if !filepath.IsAbs(p) {
		target = filepath.Join(root, p)
	}
	return within(root, target)
}

// resolveOutput maps a client output_dir onto root. Only relative paths are accepted.
func resolveOutput(root, p string) (string, error) {
	if root == "" {
		return "", ErrNoRoot
	}
	if filepath.IsAbs(p) {
		return "", fmt.Errorf("%w: %s", ErrAbsolutePath, p)
	}
	return within(root, filepath.Join(root, p))
}

// within cleans target and checks it does not climb out of root.
func within(root, target string) (string, error) {
	target = filepath.Clean(target)
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrPathOutsideRoot, target)
	}
	return target, nil
}

// absRoot cleans a configured root; empty stays empty.
func absRoot(dir string) string {
	if dir == "" {
		return ""
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return filepath.Clean(dir)
	}
	return abs
}
