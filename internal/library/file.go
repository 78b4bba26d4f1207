// filepath: internal/library/file.go
// Package library provides the on-disk layout and file plumbing for one
// shape library. This file handles raw file transfer.
package library

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// SaveFile saves file data from a reader to a specified path.
// It streams the file to avoid loading it entirely into memory.
func SaveFile(fileData io.Reader, path string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, fmt.Errorf("could not create directory structure: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("could not create file: %w", err)
	}
	defer f.Close()

	fileSize, err := io.Copy(f, fileData)
	if err != nil {
		return 0, fmt.Errorf("could not write file: %w", err)
	}

	return fileSize, nil
}

// CopyFile duplicates src to dst, creating parent directories as needed.
// The source file is left untouched.
func CopyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("could not open source file: %w", err)
	}
	defer in.Close()

	return SaveFile(in, dst)
}
