package convert

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// MapEntry maps converted files ending in Suffix to the wiki page PageID.
type MapEntry struct {
	PageID string
	Suffix string
	Line   int
}

// Mapping is the ordered list of entries from a mapping file.
type Mapping []MapEntry

// ParseMapping reads "post <pageId> <fileSuffix>" lines. Blank lines and
// lines starting with '#' are ignored; anything else is an error.
func ParseMapping(r io.Reader) (Mapping, error) {
	var m Mapping
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 3 || fields[0] != "post" {
			return nil, fmt.Errorf("line %d: expected \"post <pageId> <fileSuffix>\", got %q", lineNo, line)
		}
		m = append(m, MapEntry{PageID: fields[1], Suffix: fields[2], Line: lineNo})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read mapping: %w", err)
	}
	return m, nil
}

// LoadMapping reads the mapping file at path. A missing file is an empty
// mapping.
func LoadMapping(path string) (Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Mapping{}, nil
		}
		return nil, fmt.Errorf("failed to open mapping %s: %w", path, err)
	}
	defer f.Close()

	m, err := ParseMapping(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Match returns the entries whose suffix ends path.
func (m Mapping) Match(path string) []MapEntry {
	slashed := filepath.ToSlash(path)
	var matches []MapEntry
	for _, e := range m {
		if strings.HasSuffix(slashed, e.Suffix) {
			matches = append(matches, e)
		}
	}
	return matches
}
