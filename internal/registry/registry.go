// Package registry loads the ordered list of portfolio projects.
package registry

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jfeuerstein/josh-space/internal/tiles"
)

var ErrEmpty = errors.New("registry: no projects defined")

//go:embed projects.yaml
var defaultProjects []byte

type file struct {
	Projects []tiles.Project `yaml:"projects"`
}

// Default returns the built-in project list.
func Default() []tiles.Project {
	projects, err := Parse(defaultProjects)
	if err != nil {
		panic(fmt.Sprintf("registry: embedded projects.yaml: %v", err))
	}
	return projects
}

// Load reads projects from path, or returns the built-in list when path is
// empty.
func Load(path string) ([]tiles.Project, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read projects file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a projects document.
func Parse(data []byte) ([]tiles.Project, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse projects file: %w", err)
	}
	if len(f.Projects) == 0 {
		return nil, ErrEmpty
	}
	return f.Projects, nil
}
