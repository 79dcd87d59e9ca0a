package convert

import (
	"strings"

	"github.com/olgasafonova/dokuwiki-tools/internal/kvconfig"
)

const (
	// DefaultConverter is the converter executable looked up on PATH
	DefaultConverter = "mdtowiki"

	// DefaultMapFile lists the page mappings for auto-upload
	DefaultMapFile = "dokuwiki_map.txt"

	// DefaultRoot is the folder scanned for exported zip archives
	DefaultRoot = "notion"

	// DefaultSave is the output base name for single-file conversion
	DefaultSave = "output"
)

// DefaultExtensions are the recognized source document extensions
var DefaultExtensions = []string{".md", ".markdown"}

// Config holds conversion settings
type Config struct {
	// Converter is the executable invoked for each document
	Converter string

	// ConverterArgs are inserted before the input and output flags,
	// e.g. "run --" when Converter is cargo
	ConverterArgs []string

	// Extensions recognized when searching an extracted archive
	Extensions []string

	// MapFile is the page mapping file
	MapFile string

	// Root is the folder holding archives
	Root string
}

// DefaultConfig returns the settings used when nothing is configured
func DefaultConfig() Config {
	return Config{
		Converter:  DefaultConverter,
		Extensions: append([]string(nil), DefaultExtensions...),
		MapFile:    DefaultMapFile,
		Root:       DefaultRoot,
	}
}

// FromValues overlays the c_* keys of a parsed config file on c.
func (c Config) FromValues(v kvconfig.Values) Config {
	c.Converter = v.String("c_converter", c.Converter)
	if args := v.String("c_converter_args", ""); args != "" {
		c.ConverterArgs = strings.Fields(args)
	}
	return c
}
