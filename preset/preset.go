// Package preset reads tuning catalogs from JSON or YAML.
//
// A catalog looks like
//
//	{"tunings": [{"name": "Standard", "tuning": [{"string": 6, "note": "E2", "frequency": 82.41}]}]}
package preset

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/sonido-tuner/logging"
	"github.com/RyanBlaney/sonido-tuner/tuner"
)

// Format is a catalog encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported preset format")
	ErrEmptyCatalog      = errors.New("preset contains no tunings")
)

//go:embed tunings.yaml
var builtinData []byte

// catalog is the on-disk document.
type catalog struct {
	Tunings []tuner.Tuning `json:"tunings" yaml:"tunings"`
}

// LoadError describes a catalog that could not be read or validated.
type LoadError struct {
	Path   string // empty for in-memory data
	Format Format
	Err    error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("load %s preset: %v", e.Format, e.Err)
	}
	return fmt.Sprintf("load %s preset %s: %v", e.Format, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// FormatFromPath picks a format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Decode parses and validates a catalog.
func Decode(data []byte, format Format) ([]tuner.Tuning, error) {
	var doc catalog

	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, &LoadError{Format: format, Err: err}
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return nil, &LoadError{Format: format, Err: err}
		}
	default:
		return nil, &LoadError{Format: format, Err: fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)}
	}

	if err := Validate(doc.Tunings); err != nil {
		return nil, &LoadError{Format: format, Err: err}
	}
	return doc.Tunings, nil
}

// Load reads a catalog file, choosing the format by extension.
func Load(path string) ([]tuner.Tuning, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "preset_loader",
		"path":      path,
	})

	format, err := FormatFromPath(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Format: format, Err: err}
	}

	tunings, err := Decode(data, format)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			loadErr.Path = path
		}
		logger.Error(err, "Failed to decode preset")
		return nil, err
	}

	logger.Debug("Preset loaded", logging.Fields{
		"format":  string(format),
		"tunings": len(tunings),
	})
	return tunings, nil
}

// Builtin returns the catalog compiled into the binary.
func Builtin() []tuner.Tuning {
	tunings, err := Decode(builtinData, FormatYAML)
	if err != nil {
		panic(fmt.Sprintf("builtin presets are invalid: %v", err))
	}
	return tunings
}

// Validate checks names, string numbers and frequencies.
func Validate(tunings []tuner.Tuning) error {
	if len(tunings) == 0 {
		return ErrEmptyCatalog
	}

	for i, t := range tunings {
		if strings.TrimSpace(t.Name) == "" {
			return fmt.Errorf("tuning %d: missing name", i)
		}
		for j, s := range t.Strings {
			if s.String < 1 {
				return fmt.Errorf("tuning %q string %d: invalid string number %d", t.Name, j, s.String)
			}
			if s.Frequency <= 0 || math.IsNaN(s.Frequency) || math.IsInf(s.Frequency, 0) {
				return fmt.Errorf("tuning %q string %d: invalid frequency %v", t.Name, s.String, s.Frequency)
			}
		}
	}
	return nil
}
