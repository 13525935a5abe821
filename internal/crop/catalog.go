package crop

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrUnknownCrop = errors.New("unknown crop")

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog maps crop names to their parameters.
type Catalog map[string]Params

// Default returns the built-in catalog.
func Default() Catalog {
	c, err := ReadCatalog(bytes.NewReader(defaultCatalog))
	if err != nil {
		panic(fmt.Sprintf("crop: embedded catalog: %v", err))
	}
	return c
}

// ReadCatalog decodes a YAML catalog. Unknown fields are rejected so a
// misspelt parameter does not silently read as zero.
func ReadCatalog(r io.Reader) (Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode crop catalog: %w", err)
	}
	for name, p := range c {
		p.Name = name
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("crop %s: %w", name, err)
		}
		c[name] = p
	}
	return c, nil
}

// LoadCatalog reads a catalog file.
func LoadCatalog(path string) (Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCatalog(f)
}

// Lookup finds a crop by name, ignoring case.
func (c Catalog) Lookup(name string) (Params, error) {
	if p, ok := c[name]; ok {
		return p, nil
	}
	for k, p := range c {
		if strings.EqualFold(k, name) {
			return p, nil
		}
	}
	return Params{}, fmt.Errorf("%w: %q", ErrUnknownCrop, name)
}

// Names lists the catalog's crops in sorted order.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for k := range c {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Lookup finds a crop in the built-in catalog.
func Lookup(name string) (Params, error) {
	return Default().Lookup(name)
}
