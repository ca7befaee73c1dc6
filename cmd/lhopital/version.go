package main

import (
	"fmt"

	"github.com/WillKirkmanM/lhopital"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of lhopital",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("lhopital version %s\n", lhopital.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
