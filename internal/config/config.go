package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Load читает конфиг по указанному пути. При пустом пути читаются только переменные окружения.
func Load(path string) (*Config, error) {
	op := "config.Load()"

	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%s: config file %q: %w", op, path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("%s: cannot read config: %w", op, err)
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("%s: cannot read env: %w", op, err)
		}
	}
	cfg.configPath = path

	if len(cfg.ScraperConfig.Passo.Venues) == 0 {
		cfg.ScraperConfig.Passo.Venues = DefaultVenues()
	}

	categories, err := LoadCategories(cfg.CategoriesFile)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	cfg.Categories = categories

	return &cfg, nil
}

func (c *Config) ConfigPath() string {
	return c.configPath
}

// DSN собирает строку подключения для lib/pq.
func (d DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}
