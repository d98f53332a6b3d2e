// Package config loads named representation presets from TOML or YAML
// files.
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/arose/molstar/pkg/names"
	"github.com/arose/molstar/pkg/props"
)

var (
	// ErrUnknownPreset is returned by File.Preset for missing names.
	ErrUnknownPreset = errors.New("config: unknown preset")
	// ErrUnsupportedFile is returned for files that are neither TOML nor
	// YAML.
	ErrUnsupportedFile = errors.New("config: unsupported file type")
)

// DefaultPath is where user presets are looked up when no path is given.
const DefaultPath = "~/.config/molmesh/presets.toml"

// Preset names a representation and the property override to build it
// with.
type Preset struct {
	Representation string `toml:"representation" yaml:"representation"`
	props.Override `yaml:",inline"`
}

// File is a set of presets by name.
type File struct {
	Presets map[string]Preset `toml:"presets" yaml:"presets"`
}

// Builtin returns the presets that are always available.
func Builtin() *File {
	return &File{Presets: map[string]Preset{
		"ball-and-stick": {Representation: "ball-and-stick", Override: props.Override{
			SizeFactor: lo.ToPtr[float32](0.25),
		}},
		"spacefill": {Representation: "spacefill"},
		"glycans": {Representation: "carbohydrate", Override: props.Override{
			ColorTheme: lo.ToPtr("carbohydrate-symbol"),
			SizeTheme:  lo.ToPtr("uniform"),
		}},
		"surface": {Representation: "molecular-surface", Override: props.Override{
			ColorTheme: lo.ToPtr("chain-id"),
		}},
	}}
}

// Load reads a preset file. The format follows the extension: .toml,
// .yaml or .yml. A leading ~ is expanded to the home directory.
func Load(path string) (*File, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, errors.Wrapf(err, "config: expand %q", path)
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, errors.Wrap(err, "config")
	}
	f, err := Parse(data, filepath.Ext(expanded))
	if err != nil {
		return nil, errors.WithMessage(err, expanded)
	}
	return f, nil
}

// Parse decodes preset data of the given extension. Unknown keys are
// errors.
func Parse(data []byte, ext string) (*File, error) {
	var f File
	switch strings.ToLower(ext) {
	case ".toml":
		if err := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(&f); err != nil {
			return nil, errors.Wrap(err, "config: toml")
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, errors.Wrap(err, "config: yaml")
		}
	default:
		return nil, errors.Wrapf(ErrUnsupportedFile, "%q", ext)
	}
	for name, p := range f.Presets {
		if p.Representation == "" {
			return nil, errors.Errorf("config: preset %q has no representation", name)
		}
	}
	return &f, nil
}

// LoadOrBuiltin returns the builtin presets overlaid with the presets of
// path. A missing file at DefaultPath is not an error.
func LoadOrBuiltin(path string) (*File, error) {
	base := Builtin()
	if path == "" {
		path = DefaultPath
		expanded, err := homedir.Expand(path)
		if err != nil {
			return base, nil
		}
		if _, err := os.Stat(expanded); os.IsNotExist(err) {
			return base, nil
		}
	}
	user, err := Load(path)
	if err != nil {
		return nil, err
	}
	return base.Merge(user), nil
}

// Merge returns the presets of f with those of other replacing same-named
// entries.
func (f *File) Merge(other *File) *File {
	out := &File{Presets: make(map[string]Preset, len(f.Presets)+len(other.Presets))}
	for k, v := range f.Presets {
		out.Presets[k] = v
	}
	for k, v := range other.Presets {
		out.Presets[k] = v
	}
	return out
}

// Names returns the preset names, sorted.
func (f *File) Names() []string {
	n := lo.Keys(f.Presets)
	sort.Strings(n)
	return n
}

// Preset returns the named preset.
func (f *File) Preset(name string) (Preset, error) {
	p, ok := f.Presets[name]
	if !ok {
		return Preset{}, names.Unknown(ErrUnknownPreset, name, f.Names())
	}
	return p, nil
}
