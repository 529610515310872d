package server

import (
	"github.com/VictoriaMetrics/metrics"
	"github.com/gin-gonic/gin"
)

// --------------------------------------------------------------------------
// Metrics
// --------------------------------------------------------------------------

var (
	queriesTotal      = metrics.NewCounter(`dtdb_queries_total`)
	queriesFailed     = metrics.NewCounter(`dtdb_queries_failed_total`)
	queriesProhibited = metrics.NewCounter(`dtdb_queries_prohibited_total`)
	journalWrites     = metrics.NewCounter(`dtdb_journal_writes_total`)
	backupsTotal      = metrics.NewCounter(`dtdb_backups_total`)
	backupsFailed     = metrics.NewCounter(`dtdb_backups_failed_total`)
)

// metricsHandler exposes all registered metrics in Prometheus text format.
func metricsHandler(c *gin.Context) {
	c.Header("Content-Type", "text/plain; charset=utf-8")
	metrics.WritePrometheus(c.Writer, true)
}
