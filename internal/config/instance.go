package config

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"tabuvrp/internal/model"
)

// Instance is a problem file for the CLI. JSON files parse too since JSON is
// valid YAML.
type Instance struct {
	Name   string             `yaml:"name"`
	Sites  []model.SiteIn     `yaml:"sites"`
	Solver model.SolverConfig `yaml:"solver"`
}

// LoadInstance reads an instance file. Solver keys the file omits keep the
// values from defaults.
func LoadInstance(path string, defaults model.SolverConfig) (Instance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Instance{}, fmt.Errorf("load instance: read %q: %w", path, err)
	}
	inst := Instance{Solver: defaults}
	if err := yaml.Unmarshal(data, &inst); err != nil {
		return Instance{}, fmt.Errorf("load instance: parse %q: %w", path, err)
	}
	if len(inst.Sites) == 0 {
		return Instance{}, fmt.Errorf("load instance: %q has no sites", path)
	}
	return inst, nil
}
