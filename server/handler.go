package server

import (
	"io"
	"net/http"
	"slices"

	"github.com/MasahideMori-SimpleAppli/delta-trace-db-go-server/lib/query"
	"github.com/gin-gonic/gin"
)

// --------------------------------------------------------------------------
// Backend Endpoint
// --------------------------------------------------------------------------

// handleBackend is the single business endpoint of the server. It restores
// the query from the request body, executes it against the database and
// returns the outcome. Successfully executed queries are appended to the
// query journal.
func (s *Server) handleBackend(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Processing failed."})
		return
	}

	req, err := query.ParseRequest(body)
	if err != nil {
		s.log.WithError(err).Debug("rejected malformed request")
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Processing failed."})
		return
	}

	queriesTotal.Inc()
	outcome := s.db.Execute(req, s.cfg.Prohibit...)

	if outcome.Success() {
		s.journalQuery(body)
		c.JSON(http.StatusOK, outcome)
		return
	}
	queriesFailed.Inc()

	// A failed request that asked for a prohibited operation is rejected
	// explicitly; every other failure is reported through the outcome body
	// so the frontend can inspect isSuccess.
	for _, t := range req.QueryTypes() {
		if slices.Contains(s.cfg.Prohibit, t) {
			queriesProhibited.Inc()
			s.log.WithField("type", t.String()).Warn("prohibited query rejected")
			c.JSON(http.StatusForbidden, gin.H{"detail": "Operation not permitted."})
			return
		}
	}

	c.JSON(http.StatusOK, outcome)
}

// journalQuery appends the raw query JSON to the journal folder. Journal
// failures are logged but never fail the request, the query has already
// been applied.
func (s *Server) journalQuery(body []byte) {
	path, err := s.journal.WriteRaw(body)
	if err != nil {
		s.log.WithError(err).Error("failed to write query journal")
		return
	}
	journalWrites.Inc()
	s.log.WithField("file", path).Debug("query journaled")
}

// --------------------------------------------------------------------------
// Health Endpoint
// --------------------------------------------------------------------------

// handleHealth reports liveness plus basic database statistics.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"collections": len(s.db.CollectionNames()),
		"documents":   s.db.Length(),
	})
}
