package kitchen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// yamlMenuFile is the top-level YAML structure for menu seed files.
type yamlMenuFile struct {
	Meals []yamlMeal `yaml:"meals"`
}

// yamlMeal is the YAML representation of a seed meal.
type yamlMeal struct {
	Name       string  `yaml:"name"`
	Cuisine    string  `yaml:"cuisine"`
	Price      float64 `yaml:"price"`
	Difficulty string  `yaml:"difficulty"`
}

// LoadMealsFromBytes parses and validates meals from YAML bytes.
//
// Precondition: data must be valid YAML conforming to the menu schema.
// Postcondition: Returns validated meals or the first validation error.
func LoadMealsFromBytes(data []byte) ([]Meal, error) {
	var file yamlMenuFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing menu YAML: %w", err)
	}

	meals := make([]Meal, 0, len(file.Meals))
	for i, ym := range file.Meals {
		difficulty, err := ParseDifficulty(ym.Difficulty)
		if err != nil {
			return nil, fmt.Errorf("meal %d (%s): %w", i, ym.Name, err)
		}
		m := Meal{
			Name:       ym.Name,
			Cuisine:    ym.Cuisine,
			Price:      ym.Price,
			Difficulty: difficulty,
		}
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("meal %d (%s): %w", i, ym.Name, err)
		}
		meals = append(meals, m)
	}
	return meals, nil
}

// LoadMealsFromFile reads and validates a single menu YAML file.
//
// Precondition: path must point to a valid YAML menu file.
// Postcondition: Returns validated meals or a non-nil error.
func LoadMealsFromFile(path string) ([]Meal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading menu file %s: %w", path, err)
	}
	meals, err := LoadMealsFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return meals, nil
}

// LoadMealsFromDir loads all YAML files in a directory as menu seed files.
//
// Precondition: dir must be a valid directory path.
// Postcondition: Returns all validated meals or the first error encountered.
func LoadMealsFromDir(dir string) ([]Meal, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading menu directory %s: %w", dir, err)
	}

	var meals []Meal
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		loaded, err := LoadMealsFromFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		meals = append(meals, loaded...)
	}
	return meals, nil
}
