package ruleset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownVariant is returned when a variant ID is not registered.
var ErrUnknownVariant = errors.New("unknown ruleset variant")

// Registry indexes variants by ID.
type Registry struct {
	variants map[string]*Variant
}

// NewRegistry builds a Registry from the given variants. The ten-pin variant
// is registered first, so a file may redefine "ten_pin" explicitly.
//
// Precondition: every variant must be non-nil.
// Postcondition: Returns a Registry containing TenPinID, or an error if any
// variant is invalid or two non-builtin variants share an ID.
func NewRegistry(variants ...*Variant) (*Registry, error) {
	r := &Registry{variants: map[string]*Variant{TenPinID: TenPin()}}
	seen := make(map[string]bool, len(variants))
	for _, v := range variants {
		if err := v.Validate(); err != nil {
			return nil, err
		}
		if seen[v.VariantID] {
			return nil, fmt.Errorf("duplicate ruleset variant %q", v.VariantID)
		}
		seen[v.VariantID] = true
		r.variants[v.VariantID] = v
	}
	return r, nil
}

// Lookup returns the variant registered under id.
//
// Postcondition: Returns the variant, or an error wrapping ErrUnknownVariant.
func (r *Registry) Lookup(id string) (*Variant, error) {
	v, ok := r.variants[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, id)
	}
	return v, nil
}

// IDs returns the registered variant IDs in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.variants))
	for id := range r.variants {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// LoadVariants reads all .yaml/.yml files in dir and parses each as a Variant.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns the parsed and validated variants, sorted by ID,
// or a non-nil error naming the offending file.
func LoadVariants(dir string) ([]*Variant, error) {
	files, err := yamlFiles(dir)
	if err != nil {
		return nil, err
	}
	variants := make([]*Variant, 0, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		var v Variant
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("parsing ruleset file %s: %w", path, err)
		}
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		variants = append(variants, &v)
	}
	sort.Slice(variants, func(i, j int) bool { return variants[i].VariantID < variants[j].VariantID })
	return variants, nil
}

// Resolve returns the variant named id. When dir is empty only the builtin
// ten-pin variant is available.
//
// Postcondition: Returns a valid variant or a non-nil error.
func Resolve(dir, id string) (*Variant, error) {
	var variants []*Variant
	if dir != "" {
		loaded, err := LoadVariants(dir)
		if err != nil {
			return nil, err
		}
		variants = loaded
	}
	reg, err := NewRegistry(variants...)
	if err != nil {
		return nil, err
	}
	return reg.Lookup(id)
}

func yamlFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	return paths, nil
}
