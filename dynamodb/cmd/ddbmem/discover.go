package main

import (
	"bufio"
	"bytes"
	"io/fs"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

const schemaFilename = "schema_dynamodb.yaml"

// skipDirs are never searched for schemas.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"testdata":     true,
	"_examples":    true,
}

// discoverSchemas returns the absolute paths of the schema files below root,
// sorted. Inside a git work tree the index is asked, which honours .gitignore;
// otherwise the directory tree is walked.
func discoverSchemas(root string) ([]string, error) {
	if files, err := discoverWithGit(root); err == nil && len(files) > 0 {
		return files, nil
	}
	return discoverWithWalk(root)
}

func discoverWithGit(root string) ([]string, error) {
	if _, err := exec.LookPath("git"); err != nil {
		return nil, err
	}
	cmd := exec.Command("git", "-C", root, "ls-files", "--cached", "--others", "--exclude-standard")
	output, err := cmd.Output()
	if err != nil {
		return nil, err
	}
	return schemaPaths(root, output)
}

func discoverWithWalk(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable directories are skipped rather than failing discovery.
			return nil
		}
		if d.IsDir() {
			if path != root && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == schemaFilename {
			files = append(files, absolute(path))
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}

// schemaPaths picks the schema files out of git ls-files output, whose paths
// are relative to root.
func schemaPaths(root string, output []byte) ([]string, error) {
	var files []string
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		rel := strings.TrimSpace(scanner.Text())
		if filepath.Base(rel) != schemaFilename || inSkippedDir(rel) {
			continue
		}
		files = append(files, absolute(filepath.Join(root, rel)))
	}
	sort.Strings(files)
	return files, scanner.Err()
}

func inSkippedDir(rel string) bool {
	for _, part := range strings.Split(filepath.ToSlash(filepath.Dir(rel)), "/") {
		if skipDirs[part] {
			return true
		}
	}
	return false
}

func absolute(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
