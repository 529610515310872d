package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/MasahideMori-SimpleAppli/delta-trace-db-go-server/lib/archive"
	"github.com/MasahideMori-SimpleAppli/delta-trace-db-go-server/lib/db"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Archive file naming
const (
	journalPrefix = "log"
	journalExt    = ".q"
	backupPrefix  = "backup"
	backupExt     = ".dtdb"
)

// --------------------------------------------------------------------------
// Server Type
// --------------------------------------------------------------------------

// Server is the HTTP front of the database. It owns the query endpoint,
// the query journal and the backup scheduler.
type Server struct {
	cfg      Config
	db       *db.Database
	log      *logrus.Entry
	journal  *archive.Store
	backups  *archive.Store
	schedule *cron.Cron
}

// New creates a server for the given database.
//
// Usage:
//
//	s, err := server.New(cfg, database, log)
//	if err != nil {
//		return err
//	}
//	return s.Run(ctx)
func New(cfg Config, database *db.Database, log *logrus.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Server{
		cfg:     cfg,
		db:      database,
		log:     log.WithField("component", "server"),
		journal: archive.NewStore(cfg.JournalDir, journalPrefix, journalExt, 0),
		backups: archive.NewStore(cfg.BackupDir, backupPrefix, backupExt, cfg.BackupKeep),
	}

	if cfg.BackupSchedule != "" {
		s.schedule = cron.New()
		if _, err := s.schedule.AddFunc(cfg.BackupSchedule, s.scheduledBackup); err != nil {
			return nil, fmt.Errorf("invalid backup schedule %q: %w", cfg.BackupSchedule, err)
		}
	}

	s.log.Info("created database server")
	s.log.Info(cfg.String())
	return s, nil
}

// --------------------------------------------------------------------------
// Router Setup
// --------------------------------------------------------------------------

// router builds the gin engine with all middleware and routes.
func (s *Server) router() *gin.Engine {
	if s.cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(s.log))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	backend := r.Group("/")
	if s.cfg.AuthEnabled() {
		backend.Use(authMiddleware(s.cfg.AuthSecret))
	}
	backend.POST("/backend", s.handleBackend)

	r.GET("/healthz", s.handleHealth)
	r.GET("/metrics", metricsHandler)

	return r
}

// --------------------------------------------------------------------------
// Lifecycle
// --------------------------------------------------------------------------

// Run starts the server and blocks until the context is canceled or the
// listener fails. On shutdown the backup scheduler is stopped and a final
// backup is written.
func (s *Server) Run(ctx context.Context) error {
	if s.cfg.RestoreOnStart {
		if err := s.restoreLatest(); err != nil {
			return err
		}
	}

	if s.schedule != nil {
		s.schedule.Start()
		s.log.WithField("schedule", s.cfg.BackupSchedule).Info("backup scheduler started")
	}

	srv := &http.Server{
		Addr:              s.cfg.Endpoint,
		Handler:           s.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		var err error
		if s.cfg.TLSEnabled() {
			s.log.WithField("endpoint", s.cfg.Endpoint).Info("starting HTTPS server")
			err = srv.ListenAndServeTLS(s.cfg.TLSCertFile, s.cfg.TLSKeyFile)
		} else {
			s.log.WithField("endpoint", s.cfg.Endpoint).Info("starting HTTP server")
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	if s.schedule != nil {
		s.schedule.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.log.WithError(err).Warn("forced shutdown")
	}

	// final backup so a restart with --restore resumes from here
	if err := s.BackupNow(); err != nil {
		s.log.WithError(err).Error("final backup failed")
	}
	return nil
}
