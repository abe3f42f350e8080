package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"faithlog/internal/domain"

	"github.com/gin-gonic/gin"
)

type scrapeRequest struct {
	APIKey string `json:"apiKey"`
}

type prayerRequest struct {
	Intention string `json:"intention"`
	Category  string `json:"category"`
}

type visitRequest struct {
	ChurchName string     `json:"churchName"`
	VisitDate  *time.Time `json:"visitDate"`
	Notes      string     `json:"notes"`
}

type notificationRequest struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// scrape handles POST /api/scrape. The run is detached from the request so
// a disconnecting client does not fail the job.
func (s *Server) scrape(c *gin.Context) {
	var req scrapeRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	credential := strings.TrimSpace(req.APIKey)
	if credential == "" {
		credential = s.defaultCredential
	}

	result, err := s.svc.Scrape(context.WithoutCancel(c.Request.Context()), caller(c), credential)
	if err != nil {
		handleError(c, err, "scrape job", "run")
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) scrapeJob(c *gin.Context) {
	job, err := s.svc.ScrapeJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err, "scrape job", "get")
		return
	}

	c.JSON(http.StatusOK, job)
}

func (s *Server) latestScrapeJob(c *gin.Context) {
	job, err := s.svc.LatestScrapeJob(c.Request.Context())
	if err != nil {
		handleError(c, err, "scrape job", "get")
		return
	}

	c.JSON(http.StatusOK, job)
}

func (s *Server) listResources(c *gin.Context) {
	resources, err := s.svc.Resources(c.Request.Context(), c.Query("category"))
	if err != nil {
		handleError(c, err, "resources", "list")
		return
	}

	c.JSON(http.StatusOK, resources)
}

func (s *Server) addResource(c *gin.Context) {
	var req domain.ResourceInput
	if !bindJSON(c, &req) {
		return
	}

	id, err := s.svc.AddResource(c.Request.Context(), caller(c), req)
	if err != nil {
		handleError(c, err, "resource", "add")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (s *Server) listPrayers(c *gin.Context) {
	prayers, err := s.svc.Prayers(c.Request.Context(), caller(c))
	if err != nil {
		handleError(c, err, "prayers", "list")
		return
	}

	c.JSON(http.StatusOK, prayers)
}

func (s *Server) addPrayer(c *gin.Context) {
	var req prayerRequest
	if !bindJSON(c, &req) {
		return
	}

	id, err := s.svc.AddPrayer(c.Request.Context(), caller(c), req.Intention, req.Category)
	if err != nil {
		handleError(c, err, "prayer", "add")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (s *Server) prayerStats(c *gin.Context) {
	stats, err := s.svc.PrayerStats(c.Request.Context(), caller(c))
	if err != nil {
		handleError(c, err, "prayer stats", "get")
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (s *Server) markPrayerAnswered(c *gin.Context) {
	id, ok := parseID(c, "prayer")
	if !ok {
		return
	}

	if err := s.svc.MarkPrayerAnswered(c.Request.Context(), caller(c), id); err != nil {
		handleError(c, err, "prayer", "update")
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) removePrayer(c *gin.Context) {
	id, ok := parseID(c, "prayer")
	if !ok {
		return
	}

	if err := s.svc.RemovePrayer(c.Request.Context(), caller(c), id); err != nil {
		handleError(c, err, "prayer", "remove")
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) listVisits(c *gin.Context) {
	visits, err := s.svc.Visits(c.Request.Context(), caller(c))
	if err != nil {
		handleError(c, err, "visits", "list")
		return
	}

	c.JSON(http.StatusOK, visits)
}

func (s *Server) addVisit(c *gin.Context) {
	var req visitRequest
	if !bindJSON(c, &req) {
		return
	}

	var visitDate time.Time
	if req.VisitDate != nil {
		visitDate = *req.VisitDate
	}

	id, err := s.svc.AddVisit(c.Request.Context(), caller(c), req.ChurchName, visitDate, req.Notes)
	if err != nil {
		handleError(c, err, "visit", "add")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (s *Server) visitStats(c *gin.Context) {
	stats, err := s.svc.VisitStats(c.Request.Context(), caller(c))
	if err != nil {
		handleError(c, err, "visit stats", "get")
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (s *Server) removeVisit(c *gin.Context) {
	id, ok := parseID(c, "visit")
	if !ok {
		return
	}

	if err := s.svc.RemoveVisit(c.Request.Context(), caller(c), id); err != nil {
		handleError(c, err, "visit", "remove")
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) listNotifications(c *gin.Context) {
	notifications, err := s.svc.Notifications(c.Request.Context(), caller(c))
	if err != nil {
		handleError(c, err, "notifications", "list")
		return
	}

	c.JSON(http.StatusOK, notifications)
}

func (s *Server) addNotification(c *gin.Context) {
	var req notificationRequest
	if !bindJSON(c, &req) {
		return
	}

	id, err := s.svc.Notify(c.Request.Context(), caller(c), req.Message, req.Type)
	if err != nil {
		handleError(c, err, "notification", "add")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (s *Server) unreadCount(c *gin.Context) {
	count, err := s.svc.UnreadCount(c.Request.Context(), caller(c))
	if err != nil {
		handleError(c, err, "notifications", "count")
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (s *Server) markRead(c *gin.Context) {
	id, ok := parseID(c, "notification")
	if !ok {
		return
	}

	if err := s.svc.MarkRead(c.Request.Context(), caller(c), id); err != nil {
		handleError(c, err, "notification", "update")
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) markAllRead(c *gin.Context) {
	count, err := s.svc.MarkAllRead(c.Request.Context(), caller(c))
	if err != nil {
		handleError(c, err, "notifications", "update")
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": count})
}
