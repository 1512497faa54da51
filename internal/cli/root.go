package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/ticktui/ticktui/internal/config"
)

// GlobalFlags contains global flags available for all commands
type GlobalFlags struct {
	Config      string
	Verbose     bool
	JSON        bool
	Dev         bool
	MetricsFile string
}

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "ticktui",
	Short: "ticktui - TickTick / Dida365 from the terminal",
	Long: `ticktui signs in to TickTick (or Dida365) with OAuth, keeps the
credential cached between runs and reads or edits your projects and tasks.

Usage:
  ticktui [command] [flags]

Available Commands:
  login      Authorize ticktui with your account
  logout     Forget the cached credential
  token      Inspect or print the access token
  projects   List projects
  project    Show, create, update or delete a project
  tasks      List tasks
  task       Show, create, update, complete or delete a task
  overview   Print every project with its tasks
  doctor     Diagnose configuration and credential issues

Flags:
  --config string   Path to configuration file (default $TICKTUI_CONFIG_PATH or config.yaml)
  --dev             Serve synthetic data instead of calling the API
  --verbose         Enable debug logging
  --json            Output in JSON format

Use "ticktui [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// InitRoot initializes the root command with global flags
func InitRoot() {
	RootCmd.PersistentFlags().StringVar(&globalFlags.Config, "config", "", "Path to configuration file")
	RootCmd.PersistentFlags().BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "Enable debug logging")
	RootCmd.PersistentFlags().BoolVar(&globalFlags.JSON, "json", false, "Output in JSON format")
	RootCmd.PersistentFlags().BoolVar(&globalFlags.Dev, "dev", false, "Serve synthetic data instead of calling the API")
	RootCmd.PersistentFlags().StringVar(&globalFlags.MetricsFile, "metrics-file", "", "Write Prometheus metrics to this file on exit")

	RootCmd.AddCommand(versionCmd)
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of ticktui",
	Run: func(cmd *cobra.Command, args []string) {
		printVersion(cmd.OutOrStdout())
	},
}

var globalFlags GlobalFlags

// GetGlobalFlags returns the global flags
func GetGlobalFlags() GlobalFlags {
	return globalFlags
}

func printVersion(w io.Writer) {
	info := GetVersionInfo()
	fmt.Fprintln(w, "ticktui Version:", info.Version)
	fmt.Fprintln(w, "Go Version:", info.GoVersion)
	fmt.Fprintln(w, "OS/Arch:", info.OS+"/"+info.Arch)
}

// VersionInfo contains version information
type VersionInfo struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetVersionInfo returns version information
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:   config.Version,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}
