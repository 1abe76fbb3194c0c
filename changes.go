package opimpact

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

// ErrChangeListNotFound is returned when the changed-file list does not exist.
var ErrChangeListNotFound = errors.New("changed-file list not found")

const devNull = "/dev/null"

// ReadChangeList reads a changed-file list with one path per line.
func ReadChangeList(path string) ([]string, error) {
	f, err := openChangeList(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseChangeList(f)
}

// ParseChangeList returns the non-blank lines of r, trimmed.
func ParseChangeList(r io.Reader) ([]string, error) {
	var paths []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		paths = append(paths, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read changed-file list: %w", err)
	}
	return paths, nil
}

// ReadDiff reads a unified diff and returns the paths it touches.
func ReadDiff(path string) ([]string, error) {
	f, err := openChangeList(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseDiff(f)
}

// ParseDiff extracts the changed paths of a unified diff, such as git diff
// output. The new name wins unless the file was deleted; "a/" and "b/"
// prefixes are stripped.
func ParseDiff(r io.Reader) ([]string, error) {
	fileDiffs, err := diff.NewMultiFileDiffReader(r).ReadAllFiles()
	if err != nil {
		return nil, fmt.Errorf("parse diff: %w", err)
	}

	var paths []string
	for _, fd := range fileDiffs {
		name := fd.NewName
		if name == "" || name == devNull {
			name = fd.OrigName
		}
		name = stripDiffPrefix(name)
		if name == "" || name == devNull {
			continue
		}
		paths = append(paths, name)
	}
	return paths, nil
}

func stripDiffPrefix(name string) string {
	for _, prefix := range []string{"a/", "b/"} {
		if strings.HasPrefix(name, prefix) {
			return strings.TrimPrefix(name, prefix)
		}
	}
	return name
}

func openChangeList(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrChangeListNotFound, path)
		}
		return nil, fmt.Errorf("open changed-file list: %w", err)
	}
	return f, nil
}
