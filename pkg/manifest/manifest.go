// Package manifest loads and checks babel.yaml package manifests. A manifest
// names the package, pins a semantic version, points at the entry source file
// and lists dependency version constraints.
package manifest

import (
	"os"
	"path/filepath"
	"regexp"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Filename is the manifest file looked up inside a package directory.
const Filename = "babel.yaml"

// Manifest mirrors the babel.yaml document.
type Manifest struct {
	Name         string            `yaml:"name"`
	Version      string            `yaml:"version"`
	Entry        string            `yaml:"entry"`
	Dependencies map[string]string `yaml:"dependencies,omitempty"`
}

var (
	semver     = regexp.MustCompile(`^[0-9]+\.[0-9]+\.[0-9]+(?:-[0-9A-Za-z.-]+)?$`)
	constraint = regexp.MustCompile(`^(?:\^|~|>=|<=|>|<|=)?[0-9]+\.[0-9]+\.[0-9]+(?:-[0-9A-Za-z.-]+)?$`)
)

// Load reads and decodes dir/babel.yaml.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, Filename)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading manifest")
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return &m, nil
}

// Verify checks that the required fields are present, the version is a
// well-formed semantic version, the entry file exists under dir and every
// dependency constraint parses.
func (m *Manifest) Verify(dir string) error {
	if m.Name == "" {
		return errors.New("manifest has no name")
	}
	if m.Version == "" {
		return errors.New("manifest has no version")
	}
	if !semver.MatchString(m.Version) {
		return errors.Errorf("version %q is not a semantic version", m.Version)
	}
	if m.Entry == "" {
		return errors.New("manifest has no entry file")
	}
	if _, err := os.Stat(filepath.Join(dir, m.Entry)); err != nil {
		return errors.Wrapf(err, "entry file %q", m.Entry)
	}
	for name, c := range m.Dependencies {
		if !constraint.MatchString(c) {
			return errors.Errorf("dependency %q has malformed constraint %q", name, c)
		}
	}
	return nil
}
