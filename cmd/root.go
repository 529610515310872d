package cmd

import (
	"fmt"
	"os"

	"github.com/MasahideMori-SimpleAppli/delta-trace-db-go-server/cmd/db"
	"github.com/MasahideMori-SimpleAppli/delta-trace-db-go-server/cmd/serve"
	"github.com/spf13/cobra"
)

const (
	Version = "1.0.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "dtdb",
		Short: "in-memory document database server",
		Long: fmt.Sprintf(`dtdb (v%s)

An in-memory document database with a JSON query interface,
served over HTTP with query journaling and scheduled backups.`, Version),
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of dtdb",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dtdb v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(db.DBCommands)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
