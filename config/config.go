package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yairfalse/awsvars/types"
)

// Defaults applied by LoadConfig when the field is absent.
const (
	DefaultCacheMaxAge           = 600 * time.Second
	DefaultMaxConcurrentRequests = 8
)

// ErrInvalid wraps every validation failure so callers can classify
// configuration errors with errors.Is.
var ErrInvalid = errors.New("invalid configuration")

// Config represents the main configuration
type Config struct {
	Regions               []string   `yaml:"regions"`
	UseCache              *bool      `yaml:"use_cache"`
	CacheMaxAge           int        `yaml:"cache_max_age"`
	CacheDir              string     `yaml:"cache_dir"`
	CacheEnvVars          []string   `yaml:"cache_env_vars"`
	MaxConcurrentRequests int        `yaml:"max_concurrent_requests"`
	Profiles              ProfileSet `yaml:"aws_profiles"`

	VPCTags           []string `yaml:"vpc_tags"`
	SubnetTags        []string `yaml:"subnet_tags"`
	SecurityGroupTags []string `yaml:"security_group_tags"`
	TargetGroupTags   []string `yaml:"elb_target_group_tags"`
}

// LoadConfig loads configuration from file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is intentional user input
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyDefaults fills optional fields with their documented defaults.
func (c *Config) applyDefaults() {
	if c.UseCache == nil {
		enabled := true
		c.UseCache = &enabled
	}
	if c.CacheMaxAge == 0 {
		c.CacheMaxAge = int(DefaultCacheMaxAge / time.Second)
	}
	if c.MaxConcurrentRequests == 0 {
		c.MaxConcurrentRequests = DefaultMaxConcurrentRequests
	}
	if c.Profiles.IsZero() {
		c.Profiles = ProfileSet{Names: []string{"default"}}
	}
}

// Validate ensures config has required fields
func (c *Config) Validate() error {
	if len(c.Regions) == 0 {
		return fmt.Errorf("%w: regions is required and must be non-empty", ErrInvalid)
	}
	if c.CacheMaxAge < 0 {
		return fmt.Errorf("%w: cache_max_age must not be negative", ErrInvalid)
	}
	if c.MaxConcurrentRequests < 1 {
		return fmt.Errorf("%w: max_concurrent_requests must be positive", ErrInvalid)
	}
	if len(c.Profiles.Names) == 0 {
		return fmt.Errorf("%w: aws_profiles must declare at least one profile", ErrInvalid)
	}
	return nil
}

// CacheEnabled reports whether result caching is on.
func (c *Config) CacheEnabled() bool {
	return c.UseCache != nil && *c.UseCache
}

// CacheTTL returns the configured cache max age as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheMaxAge) * time.Second
}

// TagSchema returns the ordered tag-key schema for a resource type.
// A nil schema means no hierarchical index is built for that type.
func (c *Config) TagSchema(rt types.ResourceType) []string {
	switch rt {
	case types.TypeVPC:
		return c.VPCTags
	case types.TypeSubnet:
		return c.SubnetTags
	case types.TypeSecurityGroup:
		return c.SecurityGroupTags
	case types.TypeTargetGroup:
		return c.TargetGroupTags
	}
	return nil
}
