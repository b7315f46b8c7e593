// Package config loads and validates the connector's YAML configuration
// file. Validation errors always name the offending key so a misconfigured
// deployment can be fixed without reading source.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/zoomsync/internal/core/domain"
)

// Config holds all configuration for the connector.
type Config struct {
	Zoom             ZoomConfig             `yaml:"zoom"`
	EnterpriseSearch EnterpriseSearchConfig `yaml:"enterprise_search"`

	// Objects selects which object types are synced and optionally narrows
	// their field schemas. Presence of a key enables the type.
	Objects map[string]domain.FieldFilter `yaml:"objects"`

	// StartTime is the RFC 3339 floor of the historical window for full
	// syncs and for types without a checkpoint yet.
	StartTime string `yaml:"start_time"`

	// EndTime optionally caps the window; empty means "now".
	EndTime string `yaml:"end_time"`

	ZoomSyncThreadCount             int `yaml:"zoom_sync_thread_count"`
	EnterpriseSearchSyncThreadCount int `yaml:"enterprise_search_sync_thread_count"`
	RetryCount                      int `yaml:"retry_count"`

	EnableDocumentPermission bool `yaml:"enable_document_permission"`

	LogLevel      string `yaml:"log_level"`
	DataDirectory string `yaml:"data_directory"`
}

// ZoomConfig holds the OAuth app credentials and the identity mapping file.
type ZoomConfig struct {
	ClientID          string `yaml:"client_id"`
	ClientSecret      string `yaml:"client_secret"`
	AuthorizationCode string `yaml:"authorization_code"`
	RedirectURI       string `yaml:"redirect_uri"`

	// UserMappingFile points at a CSV of source_identity,index_identity
	// rows used for permission sync and document permission tagging.
	UserMappingFile string `yaml:"user_mapping_file"`
}

// EnterpriseSearchConfig identifies the target search index.
type EnterpriseSearchConfig struct {
	HostURL  string `yaml:"host_url"`
	APIKey   string `yaml:"api_key"`
	SourceID string `yaml:"source_id"`
}

// Load reads and parses the config file at path, applies defaults and
// validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required keys and value shapes. The returned error names
// the configuration key that needs fixing.
func (c *Config) Validate() error {
	required := []struct{ key, val string }{
		{"zoom.client_id", c.Zoom.ClientID},
		{"zoom.client_secret", c.Zoom.ClientSecret},
		{"zoom.authorization_code", c.Zoom.AuthorizationCode},
		{"zoom.redirect_uri", c.Zoom.RedirectURI},
		// source_id is absent until bootstrap has created the content
		// source; the sync commands check it themselves.
		{"enterprise_search.host_url", c.EnterpriseSearch.HostURL},
		{"enterprise_search.api_key", c.EnterpriseSearch.APIKey},
		{"start_time", c.StartTime},
	}
	for _, r := range required {
		if r.val == "" {
			return fmt.Errorf("%w: %s must not be empty", domain.ErrInvalidInput, r.key)
		}
	}

	if _, err := domain.ParseTimestamp(c.StartTime); err != nil {
		return fmt.Errorf("%w: start_time must be RFC 3339 (%s): %v",
			domain.ErrInvalidInput, domain.TimestampFormat, err)
	}
	if c.EndTime != "" {
		if _, err := domain.ParseTimestamp(c.EndTime); err != nil {
			return fmt.Errorf("%w: end_time must be RFC 3339 (%s): %v",
				domain.ErrInvalidInput, domain.TimestampFormat, err)
		}
	}

	for key, filter := range c.Objects {
		if !domain.ObjectType(key).Valid() {
			return fmt.Errorf("%w: objects.%s is not a supported object type",
				domain.ErrInvalidInput, key)
		}
		if len(filter.Include) > 0 && len(filter.Exclude) > 0 {
			// Include wins when both are set; warn via error-free validation
			// would be silent, so reject outright to keep configs honest.
			return fmt.Errorf("%w: objects.%s sets both include_fields and exclude_fields",
				domain.ErrInvalidInput, key)
		}
	}

	if c.ZoomSyncThreadCount < 1 {
		return fmt.Errorf("%w: zoom_sync_thread_count must be at least 1", domain.ErrInvalidInput)
	}
	if c.EnterpriseSearchSyncThreadCount < 1 {
		return fmt.Errorf("%w: enterprise_search_sync_thread_count must be at least 1",
			domain.ErrInvalidInput)
	}
	if c.RetryCount < 1 {
		return fmt.Errorf("%w: retry_count must be at least 1", domain.ErrInvalidInput)
	}
	return nil
}

// ConfiguredObjects returns the enabled object types in canonical order.
func (c *Config) ConfiguredObjects() []domain.ObjectType {
	var out []domain.ObjectType
	for _, t := range domain.AllObjectTypes() {
		if _, ok := c.Objects[string(t)]; ok {
			out = append(out, t)
		}
	}
	return out
}

// ObjectEnabled reports whether t is selected for syncing.
func (c *Config) ObjectEnabled(t domain.ObjectType) bool {
	_, ok := c.Objects[string(t)]
	return ok
}

// Projection resolves the effective field projection for t.
func (c *Config) Projection(t domain.ObjectType) domain.Projection {
	return domain.ResolveProjection(t, c.Objects[string(t)])
}

// StartTimeValue returns the parsed start_time floor. Validate guarantees it
// parses; a zero time is returned otherwise.
func (c *Config) StartTimeValue() time.Time {
	t, _ := domain.ParseTimestamp(c.StartTime)
	return t
}

// EndTimeValue returns the parsed end_time cap, or now when unset.
func (c *Config) EndTimeValue(now time.Time) time.Time {
	if c.EndTime == "" {
		return now
	}
	t, _ := domain.ParseTimestamp(c.EndTime)
	return t
}
