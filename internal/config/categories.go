package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CategoryMap сопоставляет пользовательскую категорию с подстроками жанров.
type CategoryMap map[string][]string

// DefaultCategories — категории, которые знает клиентское приложение.
func DefaultCategories() CategoryMap {
	return CategoryMap{
		"enerjik":   {"macera"},
		"romantik":  {"romantik", "Tiyatro"},
		"eğlenceli": {"Stand Up"},
	}
}

// LoadCategories читает yaml вида `категория: [жанр, ...]`.
// Пустой путь возвращает категории по умолчанию.
func LoadCategories(path string) (CategoryMap, error) {
	if path == "" {
		return DefaultCategories(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read categories file %q: %w", path, err)
	}

	return ParseCategories(data)
}

func ParseCategories(data []byte) (CategoryMap, error) {
	var categories CategoryMap
	if err := yaml.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("parse categories: %w", err)
	}

	for name, genres := range categories {
		if len(genres) == 0 {
			return nil, fmt.Errorf("category %q has no genres", name)
		}
	}

	if len(categories) == 0 {
		return DefaultCategories(), nil
	}

	return categories, nil
}
