package am

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable that overrides a key
const EnvPrefix = "YPGEN"

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("wiki.api_path", "/api.php")
	v.SetDefault("wiki.timeout_seconds", 30)
	v.SetDefault("wiki.edits_per_minute", 60)
	v.SetDefault("wiki.allow_private_ips", true) // most wikis generated for are intranet wikis

	v.SetDefault("store.kind", StoreMediaWiki)
	v.SetDefault("store.sqlite_path", "ypgen.db")

	v.SetDefault("generate.context", "context.yaml")
	v.SetDefault("generate.dry_run", true)
	v.SetDefault("generate.editor", false)
	v.SetDefault("generate.status_concurrency", 4)

	v.SetDefault("log.json", false)
}

// BindSensitiveEnvVars explicitly binds sensitive configuration to environment variables
func BindSensitiveEnvVars(v *viper.Viper) {
	v.BindEnv("wiki.user", EnvPrefix+"_WIKI_USER")
	v.BindEnv("wiki.password", EnvPrefix+"_WIKI_PASSWORD")
}

// EnvKey returns the environment variable that overrides key
func EnvKey(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// ExportDir returns the directory used by --to-file when none is given:
// generate.backup_dir with a leading ~ expanded, or ~/wikibackup/{wiki.id}.
func (c *Config) ExportDir() string {
	home, _ := os.UserHomeDir()
	dir := c.Generate.BackupDir
	if dir == "" {
		return filepath.Join(home, "wikibackup", c.Wiki.ID)
	}
	if dir == "~" {
		return home
	}
	if strings.HasPrefix(dir, "~/") {
		return filepath.Join(home, dir[2:])
	}
	return dir
}

// String returns a string representation of the config. The password is never shown.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Wiki: {ID: %s, URL: %s, User: %s}, Store: {Kind: %s}, Generate: {Context: %s, DryRun: %t}}",
		c.Wiki.ID, c.Wiki.URL, c.Wiki.User, c.Store.Kind, c.Generate.Context, c.Generate.DryRun)
}
