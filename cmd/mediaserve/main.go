package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "mediaserve",
		Short:         "Serve stored files and resized images over HTTP",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config directory (overrides CONFIG_PATH)")

	rootCmd.AddCommand(newServeCommand(&configPath))
	rootCmd.AddCommand(newConfigCommand(&configPath))
	return rootCmd
}
