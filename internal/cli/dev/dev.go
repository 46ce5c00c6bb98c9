// Package dev implements 'decg dev': the docker compose dev environment.
package dev

import (
	"github.com/decg-project/decg/internal/cli/shared"
	"github.com/decg-project/decg/internal/devenv"
	"github.com/spf13/cobra"
)

const defaultTail = 100

// DevCmd is the parent of the dev environment subcommands.
var DevCmd = &cobra.Command{
	Use:   "dev",
	Short: "Manage the docker compose dev environment",
	Long: `Manage the dev environment defined by the hub's compose file
(dev.compose_file, default scripts/docker/docker-compose.dev.yml). The compose
invocation is dev.compose_command, default "docker-compose".`,
	Example: `  decg dev start
  decg dev start --service backend --attach
  decg dev logs backend --tail 50
  decg dev rebuild frontend
  decg dev stop`,
}

var startCmd = &cobra.Command{
	Use:     "start",
	Aliases: []string{"up"},
	Short:   "Start the dev environment",
	Long: `Start the dev environment in the background and print the configured
endpoints. --service starts one compose service; --attach runs in the
foreground.`,
	Args: shared.NoArgs,
	RunE: runStart,
}

var stopCmd = &cobra.Command{
	Use:     "stop",
	Aliases: []string{"down"},
	Short:   "Stop the dev environment",
	Args:    shared.NoArgs,
	RunE:    runStop,
}

var logsCmd = &cobra.Command{
	Use:   "logs [service]",
	Short: "Stream container logs",
	Long:  `Stream the logs of every service, or of one service. Logs are followed unless --no-follow is given.`,
	Args:  shared.RangeArgs(0, 1),
	RunE:  runLogs,
}

var statusCmd = &cobra.Command{
	Use:     "status",
	Aliases: []string{"ps"},
	Short:   "Show the dev environment's containers",
	Args:    shared.NoArgs,
	RunE:    runStatus,
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild [service]",
	Short: "Rebuild and restart containers",
	Args:  shared.RangeArgs(0, 1),
	RunE:  runRebuild,
}

func init() {
	DevCmd.GroupID = shared.GroupDevelopment

	startCmd.Flags().StringP("service", "s", "", "Start only this compose service")
	startCmd.Flags().Bool("attach", false, "Run in the foreground")
	logsCmd.Flags().Bool("no-follow", false, "Print current logs and exit")
	logsCmd.Flags().Int("tail", defaultTail, "Number of lines to show from the end of the logs")

	DevCmd.AddCommand(startCmd, stopCmd, logsCmd, statusCmd, rebuildCmd)
}

func setup(cmd *cobra.Command) (*devenv.Environment, error) {
	env, err := shared.Setup(cmd, true)
	if err != nil {
		return nil, err
	}
	return env.Dev()
}

func runStart(cmd *cobra.Command, _ []string) error {
	service, _ := cmd.Flags().GetString("service")
	attach, _ := cmd.Flags().GetBool("attach")
	dev, err := setup(cmd)
	if err != nil {
		return err
	}
	return dev.Start(cmd.Context(), devenv.StartOptions{Service: service, Attach: attach})
}

func runStop(cmd *cobra.Command, _ []string) error {
	dev, err := setup(cmd)
	if err != nil {
		return err
	}
	return dev.Stop(cmd.Context())
}

func runLogs(cmd *cobra.Command, args []string) error {
	noFollow, _ := cmd.Flags().GetBool("no-follow")
	tail, _ := cmd.Flags().GetInt("tail")
	dev, err := setup(cmd)
	if err != nil {
		return err
	}
	return dev.Logs(cmd.Context(), logsOptions(args, noFollow, tail))
}

// logsOptions maps the logs arguments onto devenv options. A negative tail
// falls back to the default.
func logsOptions(args []string, noFollow bool, tail int) devenv.LogsOptions {
	opts := devenv.LogsOptions{Follow: !noFollow, Tail: tail}
	if opts.Tail < 0 {
		opts.Tail = defaultTail
	}
	if len(args) > 0 {
		opts.Service = args[0]
	}
	return opts
}

func runStatus(cmd *cobra.Command, _ []string) error {
	dev, err := setup(cmd)
	if err != nil {
		return err
	}
	return dev.Status(cmd.Context())
}

func runRebuild(cmd *cobra.Command, args []string) error {
	dev, err := setup(cmd)
	if err != nil {
		return err
	}
	var service string
	if len(args) > 0 {
		service = args[0]
	}
	return dev.Rebuild(cmd.Context(), service)
}
