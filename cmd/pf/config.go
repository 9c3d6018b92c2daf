package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/planfirst/planfirst/internal/config"
	"github.com/planfirst/planfirst/internal/ui"
)

var configCmd = &cobra.Command{
	Use:     "config",
	GroupID: "setup",
	Short:   "Manage configuration settings",
	Long: `Manage configuration settings stored in the project's
.copilot/config.yaml. Environment variables (PF_*) take precedence
over the file.

Known keys:
  actor              author recorded on new plans and records
  json               default to JSON output
  quiet              suppress non-essential output
  lock-timeout       how long mutations wait for the state lock
  assets.base-url    where companion documents are fetched from
  assets.timeout     per-document fetch timeout
  assets.offline     skip remote fetches entirely
  standards.enabled  install standards documents by default

Examples:
  pf config set actor "review-agent"
  pf config set standards.enabled false
  pf config get lock-timeout
  pf config list
  pf config unset actor`,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	Run: func(_ *cobra.Command, args []string) {
		key, value := args[0], args[1]

		if !config.IsKnownKey(key) {
			fmt.Fprintf(os.Stderr, "%s %q is not a key pf reads; writing it anyway\n", ui.RenderWarnIcon(), key)
		}
		if err := config.SetYamlConfig(key, value); err != nil {
			FatalError("%v", err)
		}

		if jsonOutput {
			printJSON(map[string]string{"key": key, "value": value, "location": "config.yaml"})
			return
		}
		fmt.Printf("Set %s = %s (in config.yaml)\n", key, value)
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		key := args[0]
		value := config.GetString(key)
		source := config.GetValueSource(key)

		if jsonOutput {
			printJSON(map[string]string{"key": key, "value": value, "source": string(source)})
			return
		}
		if value == "" {
			fmt.Printf("%s (not set)\n", key)
			return
		}
		fmt.Println(value)
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration",
	Run: func(_ *cobra.Command, _ []string) {
		settings := map[string]any{}
		flattenSettings("", config.AllSettings(), settings)

		if jsonOutput {
			printJSON(settings)
			return
		}

		if len(settings) == 0 {
			fmt.Println("No configuration set")
			return
		}

		keys := make([]string, 0, len(settings))
		for k := range settings {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fmt.Println("Configuration:")
		for _, k := range keys {
			line := fmt.Sprintf("  %s = %v", k, settings[k])
			// Flag values the environment overrides, so the effective
			// value never surprises.
			if config.GetValueSource(k) == config.SourceEnvVar {
				line += " " + ui.RenderMuted("(from env)")
			}
			fmt.Println(line)
		}

		if cf := config.ConfigFileUsed(); cf != "" {
			fmt.Printf("\n%s\n", ui.RenderMuted("Loaded from "+cf))
		}
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Delete a configuration value",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		if err := config.UnsetYamlConfig(args[0]); err != nil {
			FatalError("%v", err)
		}
		if !quiet && !jsonOutput {
			fmt.Printf("Unset %s\n", args[0])
		}
	},
}

// flattenSettings turns viper's nested settings map into dotted keys.
func flattenSettings(prefix string, in map[string]any, out map[string]any) {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if child, ok := v.(map[string]any); ok {
			flattenSettings(key, child, out)
			continue
		}
		out[key] = v
	}
}

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configUnsetCmd)
	rootCmd.AddCommand(configCmd)
}
