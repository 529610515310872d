package db

import (
	"github.com/MasahideMori-SimpleAppli/delta-trace-db-go-server/client"
	"github.com/MasahideMori-SimpleAppli/delta-trace-db-go-server/cmd/util"
	"github.com/spf13/cobra"
)

var (
	dbClient *client.Client

	// DBCommands represents the database client command group
	DBCommands = &cobra.Command{
		Use:               "db",
		Short:             "Query a running database server",
		PersistentPreRunE: setupClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common connection flags to the db command
	util.SetupClientFlags(DBCommands)

	// Add subcommands
	DBCommands.AddCommand(sendCmd)
	DBCommands.AddCommand(addCmd)
	DBCommands.AddCommand(searchCmd)
	DBCommands.AddCommand(getAllCmd)
	DBCommands.AddCommand(countCmd)
	DBCommands.AddCommand(perfTestCmd)
}

// setupClient initializes the HTTP client for all subcommands
func setupClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	dbClient = client.New(util.GetClientConfig())
	return nil
}
