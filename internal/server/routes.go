package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/akm-xdd/Trackly-core/internal/domain"
)

func (s *Server) registerRoutes() {
	// Observability endpoints, no auth.
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Auth
	s.echo.POST("/auth/signup", s.handleSignup)
	s.echo.POST("/auth/login", s.handleLogin)
	s.echo.POST("/auth/refresh", s.handleRefresh)

	// Users
	s.echo.GET("/users/me", s.handleCurrentUser, s.requireAuth)
	s.echo.GET("/users", s.handleListUsers, s.requireAuth, s.requireRole(domain.RoleAdmin))
	s.echo.GET("/users/:id", s.handleGetUser, s.requireAuth)
	s.echo.PUT("/users/:id", s.handleUpdateUser, s.requireAuth, s.requireRole(domain.RoleAdmin))
	s.echo.DELETE("/users/:id", s.handleDeleteUser, s.requireAuth, s.requireRole(domain.RoleAdmin))

	// Issues. Stats routes registered before /:id so "stats" never parses as an id.
	s.echo.GET("/issues/stats/count", s.handleCountIssues, s.requireAuth)
	s.echo.GET("/issues/stats/by-status", s.handleCountByStatus, s.requireAuth)
	s.echo.GET("/issues/stats/by-severity", s.handleCountBySeverity, s.requireAuth)
	s.echo.POST("/issues", s.handleCreateIssue, s.requireAuth)
	s.echo.GET("/issues", s.handleListIssues, s.requireAuth)
	s.echo.GET("/issues/user/:id", s.handleListUserIssues, s.requireAuth)
	s.echo.GET("/issues/:id", s.handleGetIssue, s.requireAuth)
	s.echo.PUT("/issues/:id", s.handleUpdateIssue, s.requireAuth)
	s.echo.DELETE("/issues/:id", s.handleDeleteIssue, s.requireAuth)
	s.echo.POST("/issues/:id/comments", s.handleAddComment, s.requireAuth)
	s.echo.GET("/issues/:id/comments", s.handleListComments, s.requireAuth)

	// Files
	s.echo.POST("/files", s.handleUploadFile, s.requireAuth)
	s.echo.GET("/files", s.handleListFiles, s.requireAuth)
	s.echo.GET("/files/:fileID", s.handleGetFile, s.requireAuth)
	s.echo.DELETE("/files/:fileID", s.handleDeleteFile, s.requireAuth)
	s.echo.Static("/files/content", s.config.FileStorageRoot)

	// Stats
	s.echo.GET("/stats/daily", s.handleDailyStats, s.requireAuth)
	s.echo.POST("/stats/aggregate", s.handleAggregateStats, s.requireAuth, s.requireRole(domain.RoleAdmin))

	// Event stream: ticket handshake over HTTP, then the WebSocket itself.
	s.echo.POST("/events/ticket", s.handleStreamTicket, s.requireAuth)
	s.echo.GET("/ws/events", s.handleEventStream)
}
