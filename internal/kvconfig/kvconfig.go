// Package kvconfig reads whitespace-separated "key value" config files such
// as doku_config.txt:
//
//	# comment
//	d_server  https://wiki.example.com/wiki
//	d_user    USERNAME
//	d_pass    PASSWORD
//
// Blank lines and lines starting with '#' are ignored. A later line with the
// same key overwrites an earlier one. Lines with a key but no value are
// skipped.
package kvconfig

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	apierrors "github.com/olgasafonova/dokuwiki-tools/internal/errors"
)

// Values holds parsed config entries.
type Values map[string]string

// Parse reads key/value lines from r.
func Parse(r io.Reader) (Values, error) {
	values := Values{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		values[fields[0]] = fields[1]
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return values, nil
}

// Load reads the config file at path. A missing file yields an empty Values
// and a ConfigMissingError, which callers treat as "use defaults".
func Load(path string) (Values, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Values{}, &apierrors.ConfigMissingError{Path: path}
		}
		return nil, fmt.Errorf("failed to open config %s: %w", path, err)
	}
	defer f.Close()

	values, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return values, nil
}

// String returns the value for key, or def when unset.
func (v Values) String(key, def string) string {
	if s, ok := v[key]; ok {
		return s
	}
	return def
}

// Bool returns the value for key parsed with strconv.ParseBool, or def when
// unset or unparsable.
func (v Values) Bool(key string, def bool) bool {
	s, ok := v[key]
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return b
}
