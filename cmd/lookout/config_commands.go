package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"lookout/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigShowCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
	}
	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		target, err := resolveInitTarget(targetPath)
		if err != nil {
			return err
		}

		if !overwrite {
			switch _, err := os.Stat(target); {
			case err == nil:
				return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
			case !os.IsNotExist(err):
				return fmt.Errorf("check config path: %w", err)
			}
		}

		// CreateSample makes the parent directory as needed.
		if err := config.CreateSample(target); err != nil {
			return fmt.Errorf("create sample config: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
		fmt.Fprintln(out, "Edit the file to set notifier.url and at least one [[providers]] entry before starting lookoutd.")
		return nil
	}
	return cmd
}

// resolveInitTarget expands the --path flag value, falling back to the
// default configuration location when the flag is empty.
func resolveInitTarget(flagValue string) (string, error) {
	flagValue = strings.TrimSpace(flagValue)
	if flagValue == "" {
		return config.DefaultConfigPath()
	}
	expanded, err := config.ExpandPath(flagValue)
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return expanded, nil
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Validate configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(ctx.configPath())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file not found; validated built-in defaults")
			}
			if len(cfg.Providers) == 0 {
				fmt.Fprintln(out, "No providers configured; notifications will be forwarded without enhancement")
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			masked := maskedConfig(cfg)
			if jsonOut {
				return writeJSON(cmd, masked)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# resolved from %s\n", ctx.resolvedPath)
			encoded, err := toml.Marshal(masked)
			if err != nil {
				return fmt.Errorf("render config: %w", err)
			}
			_, err = out.Write(encoded)
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the masked configuration as JSON")
	return cmd
}

// maskedConfig copies cfg with every credential reduced to its last four
// characters so `config show` output is safe to paste into bug reports.
func maskedConfig(cfg *config.Config) config.Config {
	masked := *cfg
	masked.Daemon.APIToken = maskSecret(cfg.Daemon.APIToken)
	masked.Detector.APIKey = maskSecret(cfg.Detector.APIKey)
	masked.Notifier.Token = maskSecret(cfg.Notifier.Token)
	masked.Providers = make([]config.Provider, len(cfg.Providers))
	for i, provider := range cfg.Providers {
		provider.APIKey = maskSecret(provider.APIKey)
		masked.Providers[i] = provider
	}
	return masked
}

func maskSecret(value string) string {
	if value == "" {
		return ""
	}
	if len(value) <= 8 {
		return "****"
	}
	return "****" + value[len(value)-4:]
}
