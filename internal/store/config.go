package store

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"gopkg.in/yaml.v3"

	"github.com/steveyegge/beans/internal/types"
)

// DefaultMaxTokens is the claim-size gate applied when the config does not
// override it.
const DefaultMaxTokens = 30000

// Config is the store-scoped configuration, stored beside the beans in
// config.yaml. It participates in the same read-modify-rename discipline as
// bean files; concurrent allocators resolve collisions by retrying.
type Config struct {
	Project string `yaml:"project"`
	NextID  int    `yaml:"next_id"`
	// AutoCloseParent closes a parent once its last child closes.
	AutoCloseParent bool `yaml:"auto_close_parent"`
	// MaxTokens refuses claims on beans whose cached estimate exceeds it.
	MaxTokens int64 `yaml:"max_tokens,omitempty"`
	// Run is an optional command template used by delegation tooling.
	Run string `yaml:"run,omitempty"`
}

// EffectiveMaxTokens falls back to the default when unset.
func (c *Config) EffectiveMaxTokens() int64 {
	if c.MaxTokens <= 0 {
		return DefaultMaxTokens
	}
	return c.MaxTokens
}

// ConfigPath returns the config file location.
func (s *Store) ConfigPath() string { return filepath.Join(s.root, ConfigFileName) }

// LoadConfig reads config.yaml. Absent auto_close_parent defaults to true.
func (s *Store) LoadConfig() (*Config, error) {
	data, err := os.ReadFile(s.ConfigPath())
	if err != nil {
		return nil, types.WrapIO(s.ConfigPath(), err)
	}
	cfg := &Config{AutoCloseParent: true}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, types.E(types.KindValidation, "parsing %s: %v", s.ConfigPath(), err)
	}
	return cfg, nil
}

// SaveConfig writes config.yaml atomically.
func (s *Store) SaveConfig(cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return types.E(types.KindIO, "serializing config: %v", err)
	}
	return atomicWrite(s.ConfigPath(), data)
}

// AllocateID consumes the next root-level ID from the config allocator.
// taken reports whether a candidate is already used (typically a filename
// collision from a concurrent create); the allocator then re-reads the
// config and tries again with exponential backoff. The counter is
// deliberately monotonic: IDs are never reused, even after delete.
func (s *Store) AllocateID(taken func(id string) bool) (string, error) {
	var allocated string
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 10 * time.Millisecond
	bo.MaxElapsedTime = 5 * time.Second
	op := func() error {
		cfg, err := s.LoadConfig()
		if err != nil {
			return backoff.Permanent(err)
		}
		candidate := strconv.Itoa(cfg.NextID)
		cfg.NextID++
		if err := s.SaveConfig(cfg); err != nil {
			return backoff.Permanent(err)
		}
		if taken != nil && taken(candidate) {
			return types.E(types.KindDuplicate, "allocator collision on ID %s", candidate)
		}
		allocated = candidate
		return nil
	}
	if err := backoff.Retry(op, bo); err != nil {
		return "", err
	}
	return allocated, nil
}
