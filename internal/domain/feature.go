package domain

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
)

var (
	ErrFeatureNotFound = errors.New("feature not found in registry")
	ErrFeatureExists   = errors.New("feature already registered")
	ErrRemoveDefault   = errors.New("cannot remove the default feature")
	ErrNoFeatures      = errors.New("no features registered")
)

// Feature is a registry entry naming a remote root work item.
type Feature struct {
	ID          int    `yaml:"id"`
	Description string `yaml:"description"`
	AddedAt     string `yaml:"added_at"`
}

// Registry maps short names to features. Default, when set, always names an
// existing entry.
type Registry struct {
	Features map[string]Feature
	Default  string
}

// NewRegistry copies features into a new registry.
func NewRegistry(features map[string]Feature, def string) *Registry {
	r := &Registry{Features: make(map[string]Feature, len(features)), Default: def}
	for name, f := range features {
		r.Features[name] = f
	}
	if _, ok := r.Features[def]; !ok {
		r.Default = ""
	}
	return r
}

// Names returns registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.Features))
	for n := range r.Features {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Add registers a feature. The first feature added becomes the default.
func (r *Registry) Add(name string, f Feature) error {
	if name == "" {
		return fmt.Errorf("feature name is required")
	}
	if _, ok := r.Features[name]; ok {
		return fmt.Errorf("%w: %q", ErrFeatureExists, name)
	}
	if r.Features == nil {
		r.Features = make(map[string]Feature)
	}
	r.Features[name] = f
	if r.Default == "" {
		r.Default = name
	}
	return nil
}

// Remove deletes a feature. The default feature cannot be removed until
// another entry is made default.
func (r *Registry) Remove(name string) error {
	if _, ok := r.Features[name]; !ok {
		return fmt.Errorf("%w: %q", ErrFeatureNotFound, name)
	}
	if r.Default == name {
		return fmt.Errorf("%w: %q is the default; set another default first", ErrRemoveDefault, name)
	}
	delete(r.Features, name)
	return nil
}

// SetDefault marks an existing feature as the default.
func (r *Registry) SetDefault(name string) error {
	if _, ok := r.Features[name]; !ok {
		return fmt.Errorf("%w: %q", ErrFeatureNotFound, name)
	}
	r.Default = name
	return nil
}

// Lookup finds a feature by name, then by remote ID.
func (r *Registry) Lookup(nameOrID string) (string, Feature, error) {
	if f, ok := r.Features[nameOrID]; ok {
		return nameOrID, f, nil
	}
	id, err := strconv.Atoi(nameOrID)
	if err != nil {
		return "", Feature{}, fmt.Errorf("%w: %q", ErrFeatureNotFound, nameOrID)
	}
	for _, name := range r.Names() {
		if r.Features[name].ID == id {
			return name, r.Features[name], nil
		}
	}
	return "", Feature{}, fmt.Errorf("%w: id %d", ErrFeatureNotFound, id)
}

// LookupOrDefault resolves nameOrID, falling back to the default feature when
// nameOrID is empty.
func (r *Registry) LookupOrDefault(nameOrID string) (string, Feature, error) {
	if nameOrID != "" {
		return r.Lookup(nameOrID)
	}
	if r.Default == "" {
		if len(r.Features) == 0 {
			return "", Feature{}, ErrNoFeatures
		}
		return "", Feature{}, fmt.Errorf("no default feature set; pass --feature")
	}
	return r.Default, r.Features[r.Default], nil
}
