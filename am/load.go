package am

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/teranos/ypgen/errors"
)

var (
	globalConfig  *Config
	viperInstance *viper.Viper
	// explicitFile replaces the file search when set, see SetConfigFile
	explicitFile string
)

// ConfigSources records which file set each key during the last Load.
// Keys missing here come from defaults or the environment.
var ConfigSources = map[string]SourceInfo{}

// configFile is one candidate file in precedence order
type configFile struct {
	path   string
	source ConfigSource
}

// SetConfigFile makes Load read only path instead of searching the usual
// locations. Environment overrides still apply.
func SetConfigFile(path string) {
	explicitFile = path
	Reset()
}

// Load reads the ypgen configuration using Viper
func Load() (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	v, err := initViper()
	if err != nil {
		return nil, err
	}

	config, err := LoadWithViper(v)
	if err != nil {
		return nil, err
	}

	globalConfig = config
	return globalConfig, nil
}

// GetViper returns the Viper instance for advanced configuration access
func GetViper() (*viper.Viper, error) {
	return initViper()
}

// LoadWithViper loads configuration using a provided Viper instance
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &config, nil
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	// Defaults only, the environment is not consulted for this load
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
	}

	config, err := LoadWithViper(v)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", configPath)
	}
	return config, nil
}

// Reset clears the cached configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viperInstance = nil
	ConfigSources = map[string]SourceInfo{}
}

// initViper initializes Viper with configuration sources and defaults
func initViper() (*viper.Viper, error) {
	if viperInstance != nil {
		return viperInstance, nil
	}

	files := searchConfigFiles()
	if explicitFile != "" {
		if _, err := os.Stat(explicitFile); err != nil {
			return nil, errors.Wrapf(err, "config file %s", explicitFile)
		}
		files = []configFile{{path: explicitFile, source: SourceExplicit}}
	}

	v, err := newViper(files)
	if err != nil {
		return nil, err
	}
	viperInstance = v
	return v, nil
}

// newViper builds a Viper instance from defaults, files and the environment
func newViper(files []configFile) (*viper.Viper, error) {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	BindSensitiveEnvVars(v)

	SetDefaults(v)

	if err := mergeConfigFiles(v, files); err != nil {
		return nil, err
	}
	return v, nil
}

// searchConfigFiles lists the usual locations, lowest precedence first:
// system < user < project
func searchConfigFiles() []configFile {
	files := []configFile{{path: "/etc/ypgen/config.toml", source: SourceSystem}}
	if home, err := os.UserHomeDir(); err == nil {
		files = append(files, configFile{path: filepath.Join(home, ".ypgen", "am.toml"), source: SourceUser})
	}
	if wd, err := os.Getwd(); err == nil {
		if project := findProjectConfig(wd); project != "" {
			files = append(files, configFile{path: project, source: SourceProject})
		}
	}
	return files
}

// SearchPaths lists the files Load reads, lowest precedence first
func SearchPaths() []string {
	if explicitFile != "" {
		return []string{explicitFile}
	}
	var paths []string
	for _, file := range searchConfigFiles() {
		paths = append(paths, file.path)
	}
	return paths
}

// findProjectConfig walks up from dir looking for am.toml.
// Returns the first one found, or empty string if none found.
func findProjectConfig(dir string) string {
	for {
		path := filepath.Join(dir, "am.toml")
		if _, err := os.Stat(path); err == nil {
			return path
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// mergeConfigFiles merges the files that exist in the given order. Later files
// override earlier ones, the environment overrides all of them. A file that
// exists but cannot be parsed is an error.
func mergeConfigFiles(v *viper.Viper, files []configFile) error {
	for _, file := range files {
		if _, err := os.Stat(file.path); err != nil {
			continue
		}

		fileViper := viper.New()
		fileViper.SetConfigFile(file.path)
		fileViper.SetConfigType("toml")
		if err := fileViper.ReadInConfig(); err != nil {
			return errors.Mark(errors.Wrapf(err, "failed to read config file %s", file.path), errors.ErrInvalidRequest)
		}

		if err := v.MergeConfigMap(fileViper.AllSettings()); err != nil {
			return errors.Wrapf(err, "failed to merge config file %s", file.path)
		}
		for _, key := range fileViper.AllKeys() {
			ConfigSources[key] = SourceInfo{Source: file.source, Path: file.path}
		}
	}
	return nil
}
