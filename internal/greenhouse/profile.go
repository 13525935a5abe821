package greenhouse

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

//go:embed profiles/default.json
var defaultProfile []byte

// Default returns the built-in reference greenhouse.
func Default() *Config {
	params, err := decodeProfile(bytes.NewReader(defaultProfile))
	if err != nil {
		panic(fmt.Sprintf("greenhouse: embedded default profile: %v", err))
	}
	c, err := FromParams(params)
	if err != nil {
		panic(fmt.Sprintf("greenhouse: embedded default profile: %v", err))
	}
	return c
}

// FromParams builds a Config from scratch. Keys that are absent stay zero,
// so a profile missing a geometry or soil key fails validation.
func FromParams(params map[string]float64) (*Config, error) {
	c := &Config{}
	if err := c.ApplyOverrides(params); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func decodeProfile(r io.Reader) (map[string]float64, error) {
	var params map[string]float64
	if err := json.NewDecoder(r).Decode(&params); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return params, nil
}

// OverlayProfile decodes a flat JSON object of parameter values and applies
// it onto a copy of base. Keys the profile leaves out keep base's values.
func OverlayProfile(r io.Reader, base *Config) (*Config, error) {
	params, err := decodeProfile(r)
	if err != nil {
		return nil, err
	}
	c := base.Clone()
	if err := c.ApplyOverrides(params); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// ReadProfile overlays a profile onto the built-in default.
func ReadProfile(r io.Reader) (*Config, error) {
	return OverlayProfile(r, Default())
}

// LoadProfile reads a profile from disk and overlays it onto base. A nil
// base means the built-in default.
func LoadProfile(path string, base *Config) (*Config, error) {
	if base == nil {
		base = Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open profile: %w", err)
	}
	defer f.Close()
	c, err := OverlayProfile(f, base)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// WriteProfile encodes every parameter of c as indented JSON with sorted
// keys.
func WriteProfile(w io.Writer, c *Config) error {
	b, err := json.MarshalIndent(c.Params(), "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}

// SaveProfile writes c to path.
func SaveProfile(path string, c *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	if err := WriteProfile(f, c); err != nil {
		f.Close()
		return fmt.Errorf("write profile: %w", err)
	}
	return f.Close()
}
