package probe

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest is the optional buildfacts.yaml describing the package.
type Manifest struct {
	Name        string   `yaml:"name"`
	Version     string   `yaml:"version"`
	Description string   `yaml:"description"`
	Homepage    string   `yaml:"homepage"`
	Authors     []string `yaml:"authors"`
	License     string   `yaml:"license"`
	Repository  string   `yaml:"repository"`
}

// LoadManifest reads path. A missing file yields ok == false and no error.
func LoadManifest(path string) (m Manifest, ok bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Manifest{}, false, nil
		}
		return Manifest{}, false, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return Manifest{}, false, fmt.Errorf("invalid manifest %s: %v", path, err)
	}
	return m, true, nil
}
