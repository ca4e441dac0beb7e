package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"brainstorm-hq/easybackup/pkg/cli"
	"brainstorm-hq/easybackup/pkg/report"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "List the backups of every retention tier",
	Long: `List the files of the daily, weekly, monthly, yearly and quarantine
folders with their sizes, followed by the total size and the free space
left on the target.`,
	RunE: runTree,
}

func init() {
	rootCmd.AddCommand(treeCmd)
}

func runTree(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	root, err := cfg.General.ResolveTargetRoot()
	if err != nil {
		return cli.NewConfigError(cfgFile, err)
	}

	tree, err := report.Build(root, cfg.Rotation.TierFolders())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), tree.String())
	return nil
}
