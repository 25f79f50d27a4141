// Package resources binds model names to remote REST resources, loaded from a
// YAML or JSON file.
package resources

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Model binds a model name to the remote resource it is stored in.
type Model struct {
	Name        string `json:"name" yaml:"name"`
	Resource    string `json:"resource" yaml:"resource"`
	Description string `json:"description" yaml:"description"`
}

// RemoteResource implements restsource.Model.
func (m Model) RemoteResource() string { return m.Resource }

type registryFile struct {
	Models []Model `json:"models" yaml:"models"`
}

// Registry is a loaded set of model bindings.
type Registry struct {
	mu     sync.RWMutex
	models []Model
	idx    map[string]Model
}

// NewRegistry validates models and indexes them by name.
func NewRegistry(models []Model) (*Registry, error) {
	reg := &Registry{
		models: make([]Model, 0, len(models)),
		idx:    make(map[string]Model, len(models)),
	}
	for i := range models {
		m := sanitizeModel(models[i])
		if err := validateModel(m); err != nil {
			return nil, fmt.Errorf("models[%d]: %w", i, err)
		}
		key := strings.ToLower(m.Name)
		if _, exists := reg.idx[key]; exists {
			return nil, fmt.Errorf("duplicate model name %q", m.Name)
		}
		reg.models = append(reg.models, m)
		reg.idx[key] = m
	}
	return reg, nil
}

// LoadRegistry loads model bindings from file.
func LoadRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("resources file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open resources file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read resources file: %w", err)
	}

	parsed, err := parseRegistry(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(parsed.Models) == 0 {
		return nil, errors.New("resources file contains no models entries")
	}
	return NewRegistry(parsed.Models)
}

type unmarshalFn func([]byte, any) error

func parseRegistry(data []byte, ext string) (registryFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		if reg, err := unmarshalRegistry(d.name, data, d.fn); err == nil {
			return reg, nil
		}
	}

	return registryFile{}, errors.New("resources file format not recognized (expected YAML or JSON)")
}

func unmarshalRegistry(name string, data []byte, fn unmarshalFn) (registryFile, error) {
	var reg registryFile
	if err := fn(data, &reg); err != nil {
		return registryFile{}, fmt.Errorf("decode %s resources: %w", name, err)
	}
	return reg, nil
}

func sanitizeModel(m Model) Model {
	m.Name = strings.TrimSpace(m.Name)
	m.Resource = strings.Trim(strings.TrimSpace(m.Resource), "/")
	m.Description = strings.TrimSpace(m.Description)
	if m.Resource == "" {
		m.Resource = m.Name
	}
	return m
}

func validateModel(m Model) error {
	if m.Name == "" {
		return errors.New("name is required")
	}
	if m.Resource == "" {
		return fmt.Errorf("resource is required for model %q", m.Name)
	}
	if strings.ContainsAny(m.Resource, "?#") {
		return fmt.Errorf("resource %q for model %q must be a plain path", m.Resource, m.Name)
	}
	return nil
}

// ByName returns the model registered under name (case-insensitive).
func (r *Registry) ByName(name string) (Model, bool) {
	if r == nil {
		return Model{}, false
	}
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Model{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.idx[name]
	return m, ok
}

// Resolve returns the named model, or an ad-hoc binding using name as the
// resource when the registry does not know it.
func (r *Registry) Resolve(name string) Model {
	if m, ok := r.ByName(name); ok {
		return m
	}
	name = strings.TrimSpace(name)
	return Model{Name: name, Resource: strings.Trim(name, "/")}
}

// All returns all models sorted by name.
func (r *Registry) All() []Model {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	out := make([]Model, len(r.models))
	copy(out, r.models)
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
