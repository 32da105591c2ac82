package config

import (
	"errors"
	"fmt"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// SeedProduct is a product loaded into the memory store at startup.
type SeedProduct struct {
	ID       int64  `koanf:"id"`
	Name     string `koanf:"name"`
	Price    int64  `koanf:"price"`
	ImageURL string `koanf:"imageurl"`
}

type StorageConfig struct {
	Backend string        `koanf:"backend"`
	Seed    []SeedProduct `koanf:"seed"`
}

func (c *StorageConfig) String() string {
	return NewSection("Storage").
		Add("storage.backend", c.Backend).
		AddIf(len(c.Seed) > 0, "storage.seed", fmt.Sprintf("%d products", len(c.Seed))).
		String()
}

func (c *StorageConfig) Validate() error {
	switch c.Backend {
	case StorageMemory:
	case StoragePostgres:
		if len(c.Seed) > 0 {
			return fmt.Errorf("storage seed is only supported by the %s backend", StorageMemory)
		}
	default:
		return fmt.Errorf("unknown storage backend %q, expected %s or %s", c.Backend, StorageMemory, StoragePostgres)
	}
	var errs []error
	for i, p := range c.Seed {
		if p.Name == "" {
			errs = append(errs, fmt.Errorf("storage seed #%d has no name", i))
		}
		if p.Price < 0 {
			errs = append(errs, fmt.Errorf("storage seed #%d has a negative price", i))
		}
	}
	return errors.Join(errs...)
}
