package preset

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Loader loads voice presets from YAML files in a directory.
type Loader struct {
	dir string

	mu      sync.RWMutex
	presets map[string]*Preset
}

// NewLoader creates a new preset loader for the given directory.
func NewLoader(dir string) *Loader {
	return &Loader{
		dir:     dir,
		presets: make(map[string]*Preset),
	}
}

// LoadAll loads all .yaml and .yml files from the configured directory.
func (l *Loader) LoadAll() (map[string]*Preset, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("read preset dir %q: %w", l.dir, err)
	}

	result := make(map[string]*Preset)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(l.dir, entry.Name())
		p, err := l.loadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load %q: %w", path, err)
		}
		result[p.Name] = p
	}

	l.mu.Lock()
	l.presets = result
	l.mu.Unlock()

	return result, nil
}

// Get returns a loaded preset by name.
func (l *Loader) Get(name string) (*Preset, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.presets[name]
	return p, ok
}

// Names returns the names of all loaded presets.
func (l *Loader) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.presets))
	for name := range l.presets {
		names = append(names, name)
	}
	return names
}

func (l *Loader) loadFile(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var p Preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	if p.Name == "" {
		base := filepath.Base(path)
		p.Name = base[:len(base)-len(filepath.Ext(base))]
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return &p, nil
}
