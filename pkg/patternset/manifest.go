package patternset

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Manifest names a group of pattern files to load together, the YAML
// convenience layer spec §3's [EXPANDED] Ruleset manifest describes.
//
// Grounded on titus's rule/ruleset YAML shape (pkg/rule/loader.go's
// yamlRulesetsFile), narrowed to the one field redactline's grammar needs:
// a list of pattern file paths, resolved relative to the manifest's own
// directory.
type Manifest struct {
	ID    string   `yaml:"id"`
	Name  string   `yaml:"name"`
	Files []string `yaml:"files"`
}

// LoadManifestFile parses a YAML manifest and loads every file it names
// into s, in listed order.
func (s *Set) LoadManifestFile(path string) error {
	if err := checkPathPolicy(path); err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("patternset: read manifest %s: %w", filepath.Base(path), err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("patternset: parse manifest %s: %w", filepath.Base(path), err)
	}

	base := filepath.Dir(path)
	for _, rel := range m.Files {
		if err := s.LoadFile(filepath.Join(base, rel)); err != nil {
			return err
		}
	}
	return nil
}
