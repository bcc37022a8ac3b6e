package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/orbitsandbox/orbit-agent/pkg/config"
	"github.com/orbitsandbox/orbit-agent/pkg/log"
)

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "orbit-agent",
	Short: "orbit-agent runs a single-host Windows sandbox agent",
	Long: `orbit-agent provisions and manages local Windows sandbox
containers: filesystem-isolated environments with their own app
installs and point-in-time snapshots, exposed over a REST + SSE
control plane.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"orbit-agent version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error); overrides config")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().String("config", config.DefaultConfigPath, "Path to the defaults config file")
	rootCmd.PersistentFlags().String("local-config", config.DefaultLocalConfigPath, "Path to the local config overlay")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(serveCmd)
}

func initLogging() {
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")
	level, _ := rootCmd.PersistentFlags().GetString("log-level")
	if level == "" {
		level = string(log.InfoLevel)
	}

	log.Init(log.Config{
		Level:      log.Level(level),
		JSONOutput: logJSON,
	})
}
