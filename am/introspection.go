package am

import (
	"os"
	"sort"

	"github.com/spf13/viper"

	"github.com/teranos/ypgen/errors"
)

// ConfigSource represents where a configuration value came from
type ConfigSource string

const (
	SourceDefault     ConfigSource = "default"
	SourceSystem      ConfigSource = "system"      // /etc/ypgen/config.toml
	SourceUser        ConfigSource = "user"        // ~/.ypgen/am.toml
	SourceProject     ConfigSource = "project"     // nearest am.toml upwards
	SourceExplicit    ConfigSource = "explicit"    // --config
	SourceEnvironment ConfigSource = "environment" // YPGEN_* env vars
)

// secretKeys are shown masked
var secretKeys = map[string]bool{
	"wiki.password": true,
}

const maskedValue = "********"

// SourceInfo tracks where a configuration value originated
type SourceInfo struct {
	Source ConfigSource
	Path   string // file path or environment variable name
}

// SettingInfo contains metadata about a configuration setting
type SettingInfo struct {
	Key        string       `json:"key"`
	Value      interface{}  `json:"value"`
	Source     ConfigSource `json:"source"`
	SourcePath string       `json:"source_path,omitempty"`
}

// GetConfigIntrospection lists every effective setting of the loaded
// configuration with its source, sorted by key
func GetConfigIntrospection() ([]SettingInfo, error) {
	v, err := GetViper()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config for introspection")
	}
	return Introspect(v, ConfigSources), nil
}

// Introspect lists the settings of v. sources names the file of each key
// read from a file; the environment wins over it when the variable is set.
func Introspect(v *viper.Viper, sources map[string]SourceInfo) []SettingInfo {
	keys := v.AllKeys()
	sort.Strings(keys)

	settings := make([]SettingInfo, 0, len(keys))
	for _, key := range keys {
		info := SourceInfo{Source: SourceDefault, Path: "built-in default"}
		if si, ok := sources[key]; ok {
			info = si
		}
		if envKey := EnvKey(key); os.Getenv(envKey) != "" {
			info = SourceInfo{Source: SourceEnvironment, Path: envKey}
		}

		value := v.Get(key)
		if secretKeys[key] && v.GetString(key) != "" {
			value = maskedValue
		}

		settings = append(settings, SettingInfo{
			Key:        key,
			Value:      value,
			Source:     info.Source,
			SourcePath: info.Path,
		})
	}
	return settings
}
