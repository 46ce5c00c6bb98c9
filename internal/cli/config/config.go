// Package config implements 'decg config': inspecting and creating decg
// configuration files.
package config

import (
	"errors"
	"fmt"
	"io"

	"github.com/decg-project/decg/internal/cli/shared"
	"github.com/decg-project/decg/internal/config"
	clierrors "github.com/decg-project/decg/internal/errors"
	"github.com/decg-project/decg/internal/output"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// ConfigCmd is the parent of the config subcommands.
var ConfigCmd = &cobra.Command{
	Use:     "config",
	Aliases: []string{"cfg"},
	Short:   "Show or create decg configuration",
	Long: `Configuration is layered, highest priority first:
  1. Environment variables (DECG_*, nested keys with "__": DECG_DEV__COMPOSE_FILE)
  2. --config file
  3. Hub config (<hub>/.decg/config.yml)
  4. User config ($XDG_CONFIG_HOME/decg/config.yml)
  5. Built-in defaults`,
	Example: `  decg config show
  decg config init
  decg config init --user --force`,
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Args:  shared.NoArgs,
	RunE:  runShow,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented default configuration file",
	Long: `Write the commented default configuration to the hub (.decg/config.yml) or,
with --user, to the user config path. Existing files are kept unless --force
is given.`,
	Args: shared.NoArgs,
	RunE: runInit,
}

func init() {
	ConfigCmd.GroupID = shared.GroupConfiguration
	initCmd.Flags().Bool("user", false, "Write the user-level config instead of the hub config")
	initCmd.Flags().BoolP("force", "f", false, "Overwrite an existing config file")

	ConfigCmd.AddCommand(showCmd, initCmd)
}

func runShow(cmd *cobra.Command, _ []string) error {
	env, err := shared.Setup(cmd, false)
	if err != nil {
		return err
	}
	return executeShow(env.Out, env.Config)
}

func executeShow(out io.Writer, cfg *config.Configuration) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding configuration: %w", err)
	}
	_, err = out.Write(data)
	return err
}

func runInit(cmd *cobra.Command, _ []string) error {
	user, _ := cmd.Flags().GetBool("user")
	force, _ := cmd.Flags().GetBool("force")

	env, err := shared.Setup(cmd, !user)
	if err != nil {
		return err
	}

	var path string
	if user {
		if path, err = config.UserConfigPath(); err != nil {
			return err
		}
	} else {
		path = config.HubConfigPath(env.Hub.Root)
	}
	return executeInit(env.Out, path, force)
}

func executeInit(out io.Writer, path string, force bool) error {
	err := config.WriteTemplate(path, force)
	if errors.Is(err, config.ErrConfigExists) {
		return clierrors.NewPrerequisiteError(
			fmt.Sprintf("config file already exists: %s", path),
			"Use --force to overwrite it",
			"Or inspect the effective settings with: decg config show")
	}
	if err != nil {
		return err
	}
	output.Success(out, "Config written: %s", path)
	return nil
}
