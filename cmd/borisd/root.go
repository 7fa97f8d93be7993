package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "borisd",
	Short: "boris is the persistence and scheduling core of a text-world server",
	Long: `borisd runs the world's three entity domains (rooms, chars, users)
on top of a flat-file record database, plus the cooperative scheduler,
reconciler, and admin HTTP server that sit around them.`,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "path to a YAML config file (defaults applied if omitted)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(entityCmd)
}
