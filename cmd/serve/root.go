package serve

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	cmdUtil "github.com/MasahideMori-SimpleAppli/delta-trace-db-go-server/cmd/util"
	"github.com/MasahideMori-SimpleAppli/delta-trace-db-go-server/lib/db"
	"github.com/MasahideMori-SimpleAppli/delta-trace-db-go-server/lib/logger"
	"github.com/MasahideMori-SimpleAppli/delta-trace-db-go-server/lib/query"
	"github.com/MasahideMori-SimpleAppli/delta-trace-db-go-server/server"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serveCmdConfig = &server.Config{}
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start the database server",
		Long:    `Start the database server with the specified configuration. The configuration can be set via command line flags or environment variables. The format of the environment variables is DTDB_<flag> (e.g. DTDB_BACKUP_KEEP=14)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(initConfig)

	// add flags
	key := "endpoint"
	ServeCmd.PersistentFlags().String(key, "127.0.0.1:8000", cmdUtil.WrapString("The address on which the server will listen"))

	key = "tls-cert"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("Path to the TLS certificate (e.g. localhost.crt). TLS is enabled when both tls-cert and tls-key are set"))

	key = "tls-key"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("Path to the TLS private key (e.g. localhost.key)"))

	key = "cors-origins"
	ServeCmd.PersistentFlags().String(key, "*", cmdUtil.WrapString("Comma-separated list of allowed CORS origins"))

	key = "auth-secret"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("HMAC secret for bearer token verification. Authentication is disabled when empty"))

	key = "prohibit"
	ServeCmd.PersistentFlags().String(key, "clear,clearAdd,conformToTemplate,renameField", cmdUtil.WrapString("Comma-separated list of query types the server refuses over the wire"))

	key = "journal-dir"
	ServeCmd.PersistentFlags().String(key, "logs", cmdUtil.WrapString("Directory for the query journal"))

	key = "backup-dir"
	ServeCmd.PersistentFlags().String(key, "backups", cmdUtil.WrapString("Directory for database backups"))

	key = "backup-keep"
	ServeCmd.PersistentFlags().Int(key, 7, cmdUtil.WrapString("How many backup files to keep (oldest are deleted first, 0 keeps all)"))

	key = "backup-schedule"
	ServeCmd.PersistentFlags().String(key, "0 1 * * *", cmdUtil.WrapString("Cron schedule for automatic backups (default: daily at 01:00). Empty disables scheduled backups"))

	key = "restore"
	ServeCmd.PersistentFlags().Bool(key, false, cmdUtil.WrapString("Load the newest backup into the database before the server starts"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))

	key = "log-file"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("Optional log file path. Logs are rotated automatically"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// parse prohibited query types
	serveCmdConfig.Prohibit = nil
	if prohibitConfig := viper.GetString("prohibit"); prohibitConfig != "" {
		for _, name := range strings.Split(prohibitConfig, ",") {
			queryType, err := query.ParseQueryType(strings.TrimSpace(name))
			if err != nil {
				return fmt.Errorf("invalid prohibit entry: %w", err)
			}
			serveCmdConfig.Prohibit = append(serveCmdConfig.Prohibit, queryType)
		}
	}

	// read the configuration from the command line flags and environment variables
	serveCmdConfig.Endpoint = viper.GetString("endpoint")
	serveCmdConfig.TLSCertFile = viper.GetString("tls-cert")
	serveCmdConfig.TLSKeyFile = viper.GetString("tls-key")
	serveCmdConfig.CORSOrigins = strings.Split(viper.GetString("cors-origins"), ",")
	serveCmdConfig.AuthSecret = viper.GetString("auth-secret")
	serveCmdConfig.JournalDir = viper.GetString("journal-dir")
	serveCmdConfig.BackupDir = viper.GetString("backup-dir")
	serveCmdConfig.BackupKeep = viper.GetInt("backup-keep")
	serveCmdConfig.BackupSchedule = viper.GetString("backup-schedule")
	serveCmdConfig.RestoreOnStart = viper.GetBool("restore")
	serveCmdConfig.LogLevel = viper.GetString("log-level")
	serveCmdConfig.LogFile = viper.GetString("log-file")

	return serveCmdConfig.Validate()
}

// run starts the database server and blocks until it is interrupted
func run(_ *cobra.Command, _ []string) error {
	log, err := logger.New(logger.Settings{
		Level: serveCmdConfig.LogLevel,
		File:  serveCmdConfig.LogFile,
	})
	if err != nil {
		return err
	}

	database := db.New()
	srv, err := server.New(*serveCmdConfig, database, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}

// initConfig reads in serveCmdConfig file and ENV variables if set.
func initConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("dtdb")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}
