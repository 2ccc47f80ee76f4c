// Package config stores named border images and the client settings.
package config

import (
	"fmt"
	"sync"
)

type Driver interface {
	Exists() (bool, error)
	Write(config Config) error
	Read() (Config, error)
}

// NewStore writes the default config when the driver has none yet.
func NewStore(driver Driver) (Store, error) {
	exists, err := driver.Exists()
	if err != nil {
		return Store{}, err
	}
	if !exists {
		if err := driver.Write(defaultConfig); err != nil {
			return Store{}, err
		}
	}

	return Store{
		driver: driver,
	}, nil
}

type Store struct {
	driver Driver
}

func (p *Store) GetConfig() (Config, error) {
	cfg, err := p.driver.Read()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// UpdateConfig writes back what fn returns, unless it is invalid.
func (p *Store) UpdateConfig(fn func(cfg Config) (Config, error)) error {
	cfg, err := p.driver.Read()
	if err != nil {
		return err
	}

	cfg, err = fn(cfg)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	return p.driver.Write(cfg)
}

func (c Config) Validate() error {
	names := make(map[string]struct{}, len(c.Images))
	for i, img := range c.Images {
		if img.Name == "" {
			return fmt.Errorf("images[%d]: missing name", i)
		}
		if _, ok := names[img.Name]; ok {
			return fmt.Errorf("images[%d]: duplicate name %q", i, img.Name)
		}
		names[img.Name] = struct{}{}

		if img.File == "" {
			return fmt.Errorf("images[%d].file: missing", i)
		}
		if err := img.Border.validate(); err != nil {
			return fmt.Errorf("images[%d].border: %w", i, err)
		}
		if img.Depth < 0 {
			return fmt.Errorf("images[%d].depth: %d is negative", i, img.Depth)
		}
		if img.Overlay != nil {
			if img.Overlay.File == "" {
				return fmt.Errorf("images[%d].overlay.file: missing", i)
			}
			if err := img.Overlay.Border.validate(); err != nil {
				return fmt.Errorf("images[%d].overlay.border: %w", i, err)
			}
		}
	}
	return nil
}

func (b Border) validate() error {
	if b.Left < 0 || b.Right < 0 || b.Top < 0 || b.Bottom < 0 {
		return fmt.Errorf("%d,%d,%d,%d has a negative side", b.Left, b.Right, b.Top, b.Bottom)
	}
	return nil
}

// Memory is a Driver that keeps the config in memory.
type Memory struct {
	mu     sync.RWMutex
	cfg    Config
	exists bool
}

func (m *Memory) Exists() (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.exists, nil
}

func (m *Memory) Read() (Config, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.exists {
		return defaultConfig, nil
	}
	return m.cfg, nil
}

func (m *Memory) Write(cfg Config) error {
	m.mu.Lock()
	m.cfg = cfg
	m.exists = true
	m.mu.Unlock()
	return nil
}
