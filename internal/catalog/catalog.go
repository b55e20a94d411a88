// Package catalog loads the immutable seed set of activities the roster starts with.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"example.com/roster/internal/domain"
)

//go:embed seed.yaml
var defaultSeed []byte

// ErrInvalidCatalog wraps every validation failure.
var ErrInvalidCatalog = errors.New("invalid activity catalog")

// Entry is one seeded activity.
type Entry struct {
	Name string `yaml:"name"`

	domain.Activity `yaml:",inline"`
}

// Catalog is the ordered seed configuration.
type Catalog struct {
	Activities []Entry `yaml:"activities"`
}

// Default returns the embedded Mergington High School catalog.
func Default() (*Catalog, error) {
	return Parse(defaultSeed)
}

// MustDefault is Default for callers that cannot recover from a broken embed.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// LoadFile reads a YAML catalog from path.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Load returns the catalog at path, or the embedded default when path is blank.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	return LoadFile(path)
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks names, capacities and participant uniqueness.
func (c *Catalog) Validate() error {
	if len(c.Activities) == 0 {
		return fmt.Errorf("%w: no activities", ErrInvalidCatalog)
	}
	seen := make(map[string]struct{}, len(c.Activities))
	for i, entry := range c.Activities {
		if strings.TrimSpace(entry.Name) == "" {
			return fmt.Errorf("%w: activity %d has no name", ErrInvalidCatalog, i)
		}
		if _, dup := seen[entry.Name]; dup {
			return fmt.Errorf("%w: duplicate activity %q", ErrInvalidCatalog, entry.Name)
		}
		seen[entry.Name] = struct{}{}

		if entry.MaxParticipants <= 0 {
			return fmt.Errorf("%w: %q max_participants must be > 0", ErrInvalidCatalog, entry.Name)
		}
		participants := make(map[string]struct{}, len(entry.Participants))
		for _, p := range entry.Participants {
			if _, dup := participants[p]; dup {
				return fmt.Errorf("%w: %q lists %s twice", ErrInvalidCatalog, entry.Name, p)
			}
			participants[p] = struct{}{}
		}
	}
	return nil
}

// Seed returns the activities keyed by name.
func (c *Catalog) Seed() map[domain.ActivityName]domain.Activity {
	out := make(map[domain.ActivityName]domain.Activity, len(c.Activities))
	for _, entry := range c.Activities {
		out[domain.ActivityName(entry.Name)] = entry.Activity.Clone()
	}
	return out
}

// Roster builds a fresh in-memory roster from the catalog.
func (c *Catalog) Roster(opts ...domain.RosterOption) *domain.MemoryRoster {
	return domain.NewMemoryRoster(c.Seed(), opts...)
}
