package tutorial

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/entrhq/pilot/pkg/docstore"
)

//go:embed seed.yaml
var defaultSeed []byte

// Seed is the set of documents the create step inserts.
type Seed struct {
	First  docstore.Person   `yaml:"first"`
	Others []docstore.Person `yaml:"others"`
}

// DefaultSeed returns the built-in sample people.
func DefaultSeed() *Seed {
	seed, err := ParseSeed(defaultSeed)
	if err != nil {
		panic(fmt.Sprintf("embedded seed is invalid: %v", err))
	}
	return seed
}

// LoadSeed reads a seed file. An empty path yields the default seed.
func LoadSeed(path string) (*Seed, error) {
	if path == "" {
		return DefaultSeed(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	seed, err := ParseSeed(data)
	if err != nil {
		return nil, fmt.Errorf("invalid seed file %s: %w", path, err)
	}
	return seed, nil
}

// ParseSeed decodes YAML seed data.
func ParseSeed(data []byte) (*Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed: %w", err)
	}
	if seed.First.Name == "" {
		return nil, errors.New("first document needs a name")
	}
	for i, p := range seed.Others {
		if p.Name == "" {
			return nil, fmt.Errorf("document %d in others needs a name", i+1)
		}
	}
	return &seed, nil
}

func (s *Seed) others() []interface{} {
	docs := make([]interface{}, len(s.Others))
	for i, p := range s.Others {
		docs[i] = p
	}
	return docs
}
