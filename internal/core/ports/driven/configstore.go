package driven

import "time"

// ConfigStore provides access to application configuration.
// Keys use dot notation matching the TOML table layout, e.g. "agent.max_rounds".
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	// Returns the value and a boolean indicating if the key exists.
	Get(key string) (any, bool)

	// GetString retrieves a string value, or "" if missing or mistyped.
	GetString(key string) string

	// GetInt retrieves an integer value, or 0 if missing or mistyped.
	GetInt(key string) int

	// GetBool retrieves a boolean value, or false if missing or mistyped.
	GetBool(key string) bool

	// GetDuration retrieves a duration written as a Go duration string
	// ("30s") or as whole seconds. Returns 0 if missing or unparseable.
	GetDuration(key string) time.Duration

	// GetStringSlice retrieves a string slice value, or nil.
	GetStringSlice(key string) []string

	// Set stores a configuration value and persists immediately.
	Set(key string, value any) error

	// Save persists the current configuration to storage.
	Save() error

	// Load reads configuration from storage.
	Load() error

	// Path returns the configuration file path.
	Path() string
}
