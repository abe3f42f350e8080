// Package api serves the JSON HTTP interface over the faith service.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"faithlog/internal/domain"
	"faithlog/internal/metrics"

	"github.com/gin-gonic/gin"
)

const (
	readTimeout     = 30 * time.Second
	writeTimeout    = 5 * time.Minute
	idleTimeout     = 2 * time.Minute
	shutdownTimeout = 10 * time.Second
	healthTimeout   = 2 * time.Second
)

type Service interface {
	Resources(ctx context.Context, category string) ([]domain.Resource, error)
	AddResource(ctx context.Context, caller domain.UserID, in domain.ResourceInput) (int64, error)
	Scrape(ctx context.Context, caller domain.UserID, credential string) (domain.ScrapeResult, error)
	ScrapeJob(ctx context.Context, id string) (*domain.ScrapeJob, error)
	LatestScrapeJob(ctx context.Context) (*domain.ScrapeJob, error)

	AddPrayer(ctx context.Context, caller domain.UserID, intention string, category string) (int64, error)
	Prayers(ctx context.Context, caller domain.UserID) ([]domain.PrayerIntention, error)
	PrayerStats(ctx context.Context, caller domain.UserID) (domain.PrayerStats, error)
	MarkPrayerAnswered(ctx context.Context, caller domain.UserID, id int64) error
	RemovePrayer(ctx context.Context, caller domain.UserID, id int64) error

	AddVisit(ctx context.Context, caller domain.UserID, churchName string, visitDate time.Time, notes string) (int64, error)
	Visits(ctx context.Context, caller domain.UserID) ([]domain.ChurchVisit, error)
	VisitStats(ctx context.Context, caller domain.UserID) (domain.VisitStats, error)
	RemoveVisit(ctx context.Context, caller domain.UserID, id int64) error

	Notify(ctx context.Context, caller domain.UserID, message string, notificationType string) (int64, error)
	Notifications(ctx context.Context, caller domain.UserID) ([]domain.Notification, error)
	UnreadCount(ctx context.Context, caller domain.UserID) (int64, error)
	MarkRead(ctx context.Context, caller domain.UserID, id int64) error
	MarkAllRead(ctx context.Context, caller domain.UserID) (int64, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	svc               Service
	db                Pinger
	metrics           *metrics.Metrics
	defaultCredential string
	engine            *gin.Engine
	log               *slog.Logger
}

// New builds the router. defaultCredential is used by scrape requests that
// carry no API key; m may be nil, which disables /metrics.
func New(svc Service, db Pinger, m *metrics.Metrics, defaultCredential string, log *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		svc:               svc,
		db:                db,
		metrics:           m,
		defaultCredential: defaultCredential,
		engine:            gin.New(),
		log:               log,
	}

	s.routes()

	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() {
	s.engine.Use(gin.Recovery(), loggerMiddleware(s.log))

	s.engine.GET("/healthz", s.health)
	if s.metrics != nil {
		s.engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	api := s.engine.Group("/api", callerMiddleware())

	api.POST("/scrape", s.scrape)
	api.GET("/scrape/latest", s.latestScrapeJob)
	api.GET("/scrape/:id", s.scrapeJob)
	api.GET("/resources", s.listResources)
	api.POST("/resources", s.addResource)

	api.GET("/prayers", s.listPrayers)
	api.POST("/prayers", s.addPrayer)
	api.GET("/prayers/stats", s.prayerStats)
	api.POST("/prayers/:id/answered", s.markPrayerAnswered)
	api.DELETE("/prayers/:id", s.removePrayer)

	api.GET("/visits", s.listVisits)
	api.POST("/visits", s.addVisit)
	api.GET("/visits/stats", s.visitStats)
	api.DELETE("/visits/:id", s.removeVisit)

	api.GET("/notifications", s.listNotifications)
	api.POST("/notifications", s.addNotification)
	api.GET("/notifications/unread", s.unreadCount)
	api.POST("/notifications/:id/read", s.markRead)
	api.POST("/notifications/read-all", s.markAllRead)
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.InfoContext(ctx, "HTTP server is listening",
			"addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen and serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown HTTP server: %w", err)
	}

	return nil
}

func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	if err := s.db.Ping(ctx); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
