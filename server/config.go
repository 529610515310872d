package server

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/MasahideMori-SimpleAppli/delta-trace-db-go-server/lib/query"
)

// --------------------------------------------------------------------------
// Server Configuration Struct
// --------------------------------------------------------------------------

// Config holds all configuration parameters of the database server.
type Config struct {
	// HTTP settings
	Endpoint    string
	TLSCertFile string
	TLSKeyFile  string
	CORSOrigins []string

	// AuthSecret is the HMAC secret for bearer token verification. Empty
	// disables authentication.
	AuthSecret string

	// Prohibit lists the query types the server refuses over the wire.
	Prohibit []query.QueryType

	// Journal and backup settings
	JournalDir     string
	BackupDir      string
	BackupKeep     int
	BackupSchedule string
	RestoreOnStart bool

	// Logging configuration
	LogLevel string
	LogFile  string
}

// DefaultProhibit is the set of query types the server refuses by default:
// maintenance operations that clients have no business calling remotely.
func DefaultProhibit() []query.QueryType {
	return []query.QueryType{
		query.QTClear,
		query.QTClearAdd,
		query.QTConformToTemplate,
		query.QTRenameField,
	}
}

// TLSEnabled reports whether the server should serve TLS.
func (c *Config) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// AuthEnabled reports whether bearer token verification is active.
func (c *Config) AuthEnabled() bool {
	return c.AuthSecret != ""
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint must not be empty")
	}
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		return fmt.Errorf("tls-cert and tls-key must be set together")
	}
	if c.BackupKeep < 0 {
		return fmt.Errorf("backup-keep must not be negative")
	}
	return nil
}

// String returns a formatted string representation of the configuration.
func (c *Config) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// HTTP settings
	addSection("HTTP Server")
	addField("Endpoint", c.Endpoint)
	addField("TLS", strconv.FormatBool(c.TLSEnabled()))
	if c.TLSEnabled() {
		addField("TLS Certificate", c.TLSCertFile)
		addField("TLS Key", c.TLSKeyFile)
	}
	addField("CORS Origins", strings.Join(c.CORSOrigins, ", "))
	addField("Authentication", strconv.FormatBool(c.AuthEnabled()))

	// Query policy
	addSection("Query Policy")
	names := make([]string, 0, len(c.Prohibit))
	for _, t := range c.Prohibit {
		names = append(names, t.String())
	}
	addField("Prohibited Types", strings.Join(names, ", "))

	// Persistence
	addSection("Persistence")
	addField("Journal Directory", c.JournalDir)
	addField("Backup Directory", c.BackupDir)
	addField("Backup Retention", strconv.Itoa(c.BackupKeep))
	addField("Backup Schedule", c.BackupSchedule)
	addField("Restore On Start", strconv.FormatBool(c.RestoreOnStart))

	// Logging configuration
	addSection("Logging")
	addField("Log Level", c.LogLevel)
	if c.LogFile != "" {
		addField("Log File", c.LogFile)
	}

	return sb.String()
}
