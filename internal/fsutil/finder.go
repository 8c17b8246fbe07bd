// Package fsutil provides file system utility functions.
package fsutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FindFilesByExtension recursively searches the given root path for all files ending
// with the specified extension. It returns a slice of their full paths.
func FindFilesByExtension(rootPath string, extension string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}

	var files []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), extension) {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return files, nil
}

// CollectFiles resolves a mix of file and directory paths into a sorted,
// de-duplicated list of files ending with extension. Directories are walked
// recursively; a file path with another extension is an error.
func CollectFiles(paths []string, extension string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, wasSeen := seen[p]; !wasSeen {
			allFiles = append(allFiles, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if !info.IsDir() {
			if !strings.HasSuffix(path, extension) {
				return nil, fmt.Errorf("specified file is not a %s file: %s", extension, path)
			}
			add(path)
			continue
		}

		found, err := FindFilesByExtension(path, extension)
		if err != nil {
			return nil, fmt.Errorf("error scanning %s: %w", path, err)
		}
		for _, f := range found {
			add(f)
		}
	}

	sort.Strings(allFiles)
	return allFiles, nil
}
