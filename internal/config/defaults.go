package config

import "github.com/custodia-labs/zoomsync/internal/core/domain"

// Default values applied to fields left unset in the config file.
const (
	DefaultZoomSyncThreadCount             = 5
	DefaultEnterpriseSearchSyncThreadCount = 5
	DefaultRetryCount                      = 3
	DefaultLogLevel                        = "info"
	DefaultDataDirectory                   = ".zoomsync"
)

// ApplyDefaults fills zero-valued optional fields with their defaults. When
// no objects are configured, every supported type is enabled with its full
// default schema.
func ApplyDefaults(cfg *Config) {
	if cfg.ZoomSyncThreadCount == 0 {
		cfg.ZoomSyncThreadCount = DefaultZoomSyncThreadCount
	}
	if cfg.EnterpriseSearchSyncThreadCount == 0 {
		cfg.EnterpriseSearchSyncThreadCount = DefaultEnterpriseSearchSyncThreadCount
	}
	if cfg.RetryCount == 0 {
		cfg.RetryCount = DefaultRetryCount
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.DataDirectory == "" {
		cfg.DataDirectory = DefaultDataDirectory
	}
	if cfg.Objects == nil {
		cfg.Objects = make(map[string]domain.FieldFilter, len(domain.AllObjectTypes()))
		for _, t := range domain.AllObjectTypes() {
			cfg.Objects[string(t)] = domain.FieldFilter{}
		}
	}
}
