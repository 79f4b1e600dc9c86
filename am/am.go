// Package am loads the ypgen configuration from TOML files and the environment.
package am

import "time"

// Config represents the ypgen configuration
type Config struct {
	Wiki     WikiConfig     `mapstructure:"wiki"`
	Store    StoreConfig    `mapstructure:"store"`
	Generate GenerateConfig `mapstructure:"generate"`
	Log      LogConfig      `mapstructure:"log"`
}

// WikiConfig identifies the wiki pages are generated for
type WikiConfig struct {
	ID              string `mapstructure:"id"`  // short name, used in the default backup dir
	URL             string `mapstructure:"url"` // base url, page urls are {url}/index.php/{title}
	APIPath         string `mapstructure:"api_path"`
	User            string `mapstructure:"user"` // empty = anonymous, no writes possible on most wikis
	Password        string `mapstructure:"password"`
	TimeoutSeconds  int    `mapstructure:"timeout_seconds"`
	EditsPerMinute  int    `mapstructure:"edits_per_minute"` // 0 = unlimited
	AllowPrivateIPs bool   `mapstructure:"allow_private_ips"`
}

// Timeout returns the request timeout as a duration
func (w WikiConfig) Timeout() time.Duration {
	return time.Duration(w.TimeoutSeconds) * time.Second
}

// StoreConfig selects where generated pages are reconciled
type StoreConfig struct {
	Kind       string `mapstructure:"kind"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// Store kinds
const (
	StoreMediaWiki = "mediawiki"
	StoreSQLite    = "sqlite"
	StoreMemory    = "memory"
)

// StoreKinds lists the accepted store.kind values
var StoreKinds = []string{StoreMediaWiki, StoreSQLite, StoreMemory}

// GenerateConfig holds defaults for generation runs. Command line flags
// override them.
type GenerateConfig struct {
	Context           string `mapstructure:"context"`    // path of the context description
	BackupDir         string `mapstructure:"backup_dir"` // default directory for --to-file
	DryRun            bool   `mapstructure:"dry_run"`
	Editor            bool   `mapstructure:"editor"`
	StatusConcurrency int    `mapstructure:"status_concurrency"`
}

// LogConfig configures log output
type LogConfig struct {
	JSON bool `mapstructure:"json"`
}

// File system constants
const (
	DefaultDirPermissions = 0755
)
