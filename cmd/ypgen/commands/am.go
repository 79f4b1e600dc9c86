package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/ypgen/am"
	"github.com/teranos/ypgen/errors"
)

// AmCmd represents the am (configuration) command
var AmCmd = newAmCmd()

func newAmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "am",
		Short: "Show the ypgen configuration",
		Long: `am - Show the ypgen configuration ("I am")

Configuration sources (in order of precedence):
1. Command line flags
2. Environment variables (YPGEN_* prefix, e.g. YPGEN_WIKI_PASSWORD)
3. Project config (nearest am.toml, searching up directories)
4. User config (~/.ypgen/am.toml)
5. System config (/etc/ypgen/config.toml)
6. Default values

Examples:
  ypgen am show                    # Show current configuration
  ypgen am show --format json      # Show configuration in JSON format
  ypgen am show --sources          # Show where every value comes from
  ypgen am validate                # Validate current configuration
  ypgen am where                   # List the files that are read`,
	}
	cmd.AddCommand(newAmShowCmd(), newAmValidateCmd(), newAmWhereCmd())
	return cmd
}

func newAmShowCmd() *cobra.Command {
	var format string
	var sources bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective ypgen configuration from all sources. The wiki password is masked.",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := am.GetConfigIntrospection()
			if err != nil {
				return err
			}
			if sources {
				return renderSources(cmd.OutOrStdout(), settings)
			}
			return renderSettings(cmd.OutOrStdout(), settings, format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "toml", "Output format: toml, json, yaml")
	cmd.Flags().BoolVar(&sources, "sources", false, "Show the source of every setting")
	return cmd
}

func newAmValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfig(); err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), pterm.Success.Sprintln("Configuration is valid"))
			return nil
		},
	}
}

func newAmWhereCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "where",
		Short: "Show where configuration is loaded from",
		Long:  "List the configuration files in order of precedence (later overrides earlier) and whether they exist.",
		RunE: func(cmd *cobra.Command, args []string) error {
			data := pterm.TableData{{"#", "File", "Found"}}
			for i, path := range am.SearchPaths() {
				found := "no"
				if _, err := os.Stat(path); err == nil {
					found = "yes"
				}
				data = append(data, []string{fmt.Sprint(i + 1), path, found})
			}
			return renderTable(cmd.OutOrStdout(), data)
		},
	}
}

// nestSettings turns dotted keys back into nested maps for marshalling
func nestSettings(settings []am.SettingInfo) map[string]interface{} {
	root := make(map[string]interface{})
	for _, s := range settings {
		node := root
		parts := splitKey(s.Key)
		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(map[string]interface{})
			if !ok {
				child = make(map[string]interface{})
				node[part] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = s.Value
	}
	return root
}

func renderSettings(w io.Writer, settings []am.SettingInfo, format string) error {
	nested := nestSettings(settings)

	var data []byte
	var err error
	switch format {
	case "json":
		data, err = json.MarshalIndent(nested, "", "  ")
		data = append(data, '\n')
	case "yaml":
		data, err = yaml.Marshal(nested)
	case "toml":
		data, err = toml.Marshal(nested)
	default:
		return errors.NewInvalidRequestError("unsupported format: %s (supported: toml, json, yaml)", format)
	}
	if err != nil {
		return errors.Wrapf(err, "failed to marshal config to %s", format)
	}

	if format != "json" {
		fmt.Fprintln(w, "# ypgen configuration")
	}
	_, err = w.Write(data)
	return err
}

func renderSources(w io.Writer, settings []am.SettingInfo) error {
	data := pterm.TableData{{"Key", "Value", "Source", "From"}}
	for _, s := range settings {
		data = append(data, []string{s.Key, fmt.Sprint(s.Value), string(s.Source), s.SourcePath})
	}
	return renderTable(w, data)
}
