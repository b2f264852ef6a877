// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ersonp/rumor-mill/internal/domain/entities"
	"github.com/ersonp/rumor-mill/internal/domain/rules"
)

const (
	// DefaultConfigDir is the directory name for rumor-mill configuration.
	DefaultConfigDir = ".rumor"
	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "config.yaml"
	// DefaultStoreDir is the default badger store location.
	DefaultStoreDir = "rumors.db"
)

// Config holds static infrastructure configuration (read-only after init)
// plus the externally-loaded policy surface: decay rates, the mutation
// curve, spread thresholds, and location modifiers.
type Config struct {
	Store       StoreConfig       `yaml:"store,omitempty"`
	LLM         LLMConfig         `yaml:"llm,omitempty"`
	Embedder    EmbedderConfig    `yaml:"embedder,omitempty"`
	Qdrant      QdrantConfig      `yaml:"qdrant,omitempty"`
	Decay       DecayConfig       `yaml:"decay,omitempty"`
	Propagation PropagationConfig `yaml:"propagation,omitempty"`
}

// StoreConfig holds configuration for the badger document store.
type StoreConfig struct {
	// Path is the badger directory. Empty means in-memory.
	Path string `yaml:"path,omitempty"`
}

// LLMConfig holds configuration for the mutation-generator LLM.
type LLMConfig struct {
	Provider string `yaml:"provider,omitempty"`
	Model    string `yaml:"model,omitempty"`
	APIKey   string `yaml:"api_key,omitempty"`
}

// EmbedderConfig holds configuration for the embedding provider.
type EmbedderConfig struct {
	Provider string `yaml:"provider,omitempty"`
	Model    string `yaml:"model,omitempty"`
	APIKey   string `yaml:"api_key,omitempty"`
}

// QdrantConfig holds configuration for the optional semantic rumor index.
type QdrantConfig struct {
	Host       string `yaml:"host,omitempty"`
	Port       int    `yaml:"port,omitempty"`
	Collection string `yaml:"collection,omitempty"`
	APIKey     string `yaml:"api_key,omitempty"`
}

// DecayConfig parameterizes the decay law.
type DecayConfig struct {
	BaseRate        float64            `yaml:"base_rate,omitempty"`
	AgeFactor       float64            `yaml:"age_factor,omitempty"`
	SeverityFactors map[string]float64 `yaml:"severity_factors,omitempty"`
}

// LocationModifier scales spread and mutation for one location type.
type LocationModifier struct {
	SpreadMultiplier       float64 `yaml:"spread_multiplier"`
	MutationChanceModifier float64 `yaml:"mutation_chance_modifier"`
}

// PropagationConfig parameterizes mutation chance and spread thresholds.
type PropagationConfig struct {
	MutationBaseChance       float64                     `yaml:"mutation_base_chance,omitempty"`
	MutationPerHop           float64                     `yaml:"mutation_per_hop,omitempty"`
	MutationMaxChance        float64                     `yaml:"mutation_max_chance,omitempty"`
	SeverityMutationFactors  map[string]float64          `yaml:"severity_mutation_factors,omitempty"`
	ThresholdBase            float64                     `yaml:"threshold_base,omitempty"`
	RelationshipShift        float64                     `yaml:"relationship_shift,omitempty"`
	SeverityThresholdOffsets map[string]float64          `yaml:"severity_threshold_offsets,omitempty"`
	Locations                map[string]LocationModifier `yaml:"locations,omitempty"`
}

// Default returns a Config with default values.
func Default() *Config {
	decay := rules.DefaultDecayPolicy()
	propagation := rules.DefaultPropagationPolicy()

	return &Config{
		Store: StoreConfig{
			Path: filepath.Join(DefaultConfigDir, DefaultStoreDir),
		},
		LLM: LLMConfig{
			Provider: "openai",
			Model:    "gpt-4o-mini",
		},
		Embedder: EmbedderConfig{
			Provider: "openai",
			Model:    "text-embedding-3-small",
		},
		Qdrant: QdrantConfig{
			Host:       "localhost",
			Port:       6334,
			Collection: "rumors",
		},
		Decay: DecayConfig{
			BaseRate:        decay.BaseRate,
			AgeFactor:       decay.AgeFactor,
			SeverityFactors: severityMapToStrings(decay.SeverityFactors),
		},
		Propagation: PropagationConfig{
			MutationBaseChance:       propagation.MutationBase,
			MutationPerHop:           propagation.MutationPerHop,
			MutationMaxChance:        propagation.MutationMax,
			SeverityMutationFactors:  severityMapToStrings(propagation.SeverityMutationFactors),
			ThresholdBase:            propagation.ThresholdBase,
			RelationshipShift:        propagation.RelationshipShift,
			SeverityThresholdOffsets: severityMapToStrings(propagation.SeverityThresholdOffsets),
			Locations:                locationsToConfig(propagation.Locations),
		},
	}
}

// Load loads configuration from the .rumor directory in the given path,
// falling back to defaults when no config file exists.
func Load(basePath string) (*Config, error) {
	cfg := Default()

	configFile := filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)
	data, err := os.ReadFile(configFile)
	if os.IsNotExist(err) {
		cfg.applyEnvOverrides()
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the config file under basePath, creating the config dir.
func (c *Config) Save(basePath string) error {
	dir := filepath.Join(basePath, DefaultConfigDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, DefaultConfigFile), data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		if c.LLM.APIKey == "" {
			c.LLM.APIKey = key
		}
		if c.Embedder.APIKey == "" {
			c.Embedder.APIKey = key
		}
	}
	if key := os.Getenv("QDRANT_API_KEY"); key != "" {
		if c.Qdrant.APIKey == "" {
			c.Qdrant.APIKey = key
		}
	}
}

// DecayPolicy builds the rules policy from the configured values.
func (c *Config) DecayPolicy() rules.DecayPolicy {
	policy := rules.DefaultDecayPolicy()
	if c.Decay.BaseRate > 0 {
		policy.BaseRate = c.Decay.BaseRate
	}
	if c.Decay.AgeFactor > 0 {
		policy.AgeFactor = c.Decay.AgeFactor
	}
	if len(c.Decay.SeverityFactors) > 0 {
		policy.SeverityFactors = severityMapFromStrings(c.Decay.SeverityFactors)
	}
	return policy
}

// PropagationPolicy builds the rules policy from the configured values.
func (c *Config) PropagationPolicy() rules.PropagationPolicy {
	policy := rules.DefaultPropagationPolicy()
	p := c.Propagation
	if p.MutationBaseChance > 0 {
		policy.MutationBase = p.MutationBaseChance
	}
	if p.MutationPerHop > 0 {
		policy.MutationPerHop = p.MutationPerHop
	}
	if p.MutationMaxChance > 0 {
		policy.MutationMax = p.MutationMaxChance
	}
	if len(p.SeverityMutationFactors) > 0 {
		policy.SeverityMutationFactors = severityMapFromStrings(p.SeverityMutationFactors)
	}
	if p.ThresholdBase > 0 {
		policy.ThresholdBase = p.ThresholdBase
	}
	if p.RelationshipShift > 0 {
		policy.RelationshipShift = p.RelationshipShift
	}
	if len(p.SeverityThresholdOffsets) > 0 {
		policy.SeverityThresholdOffsets = severityMapFromStrings(p.SeverityThresholdOffsets)
	}
	if len(p.Locations) > 0 {
		locations := make(map[string]rules.LocationModifier, len(p.Locations))
		for name, mod := range p.Locations {
			locations[name] = rules.LocationModifier{
				SpreadMultiplier:       mod.SpreadMultiplier,
				MutationChanceModifier: mod.MutationChanceModifier,
			}
		}
		policy.Locations = locations
	}
	return policy
}

// StorePath resolves the badger directory relative to basePath.
func (c *Config) StorePath(basePath string) string {
	if filepath.IsAbs(c.Store.Path) {
		return c.Store.Path
	}
	return filepath.Join(basePath, c.Store.Path)
}

func severityMapToStrings(in map[entities.Severity]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for sev, v := range in {
		out[string(sev)] = v
	}
	return out
}

func severityMapFromStrings(in map[string]float64) map[entities.Severity]float64 {
	out := make(map[entities.Severity]float64, len(in))
	for s, v := range in {
		sev, ok := entities.ParseSeverity(s)
		if !ok {
			continue
		}
		out[sev] = v
	}
	return out
}

func locationsToConfig(in map[string]rules.LocationModifier) map[string]LocationModifier {
	out := make(map[string]LocationModifier, len(in))
	for name, mod := range in {
		out[name] = LocationModifier{
			SpreadMultiplier:       mod.SpreadMultiplier,
			MutationChanceModifier: mod.MutationChanceModifier,
		}
	}
	return out
}
