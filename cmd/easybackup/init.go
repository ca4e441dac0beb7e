package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"brainstorm-hq/easybackup/pkg/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write a commented default configuration file to the --config path.
Every feature is disabled until enabled in the file. An existing file is
never overwritten.

Examples:
  easybackup init -c /etc/easybackup.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.WriteDefault(cfgFile); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", cfgFile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
