package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Load reads a profile override file layered over Default(). Fields absent
// from the file keep their default values; lists present in the file replace
// the default lists. The format is chosen by extension (.yaml, .yml, .toml).
func Load(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}

	p := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &p); err != nil {
			return Profile{}, fmt.Errorf("parse yaml profile: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &p); err != nil {
			return Profile{}, fmt.Errorf("parse toml profile: %w", err)
		}
	default:
		return Profile{}, fmt.Errorf("unsupported profile format %q", filepath.Ext(path))
	}

	if err := p.Validate(); err != nil {
		return Profile{}, fmt.Errorf("invalid profile %s: %w", path, err)
	}
	return p, nil
}

// Resolve picks the profile file when one is given, the named built-in otherwise.
func Resolve(name, file string) (Profile, error) {
	if file != "" {
		return Load(file)
	}
	return Named(name)
}
