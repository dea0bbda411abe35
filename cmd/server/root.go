package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

const defaultConfigName = "docsim.yaml"

var (
	configFile string
)

var rootCmd = &cobra.Command{
	Use:           "docsim",
	Short:         "Document automation dashboard backend",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to configuration file")
}

// resolveConfigFile defaults to a file next to the executable.
func resolveConfigFile() string {
	if configFile != "" {
		return configFile
	}
	exePath, err := os.Executable()
	if err != nil {
		return defaultConfigName
	}
	return filepath.Join(filepath.Dir(exePath), defaultConfigName)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("docsim %s (built %s)\n", Version, BuildTime)
	},
}
