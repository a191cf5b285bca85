package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/akm-xdd/Trackly-core/internal/domain"
)

type statsResponse struct {
	Date        string           `json:"date"`
	TotalIssues int64            `json:"total_issues"`
	ByStatus    map[string]int64 `json:"by_status"`
	BySeverity  map[string]int64 `json:"by_severity"`
	CreatedAt   time.Time        `json:"created_at"`
}

func toStatsResponse(s *domain.DailyStats) statsResponse {
	return statsResponse{
		Date:        s.Date.Format("2006-01-02"),
		TotalIssues: s.TotalIssues,
		ByStatus: map[string]int64{
			string(domain.StatusOpen):       s.StatusOpen,
			string(domain.StatusTriaged):    s.StatusTriaged,
			string(domain.StatusInProgress): s.StatusInProgress,
			string(domain.StatusDone):       s.StatusDone,
		},
		BySeverity: map[string]int64{
			string(domain.SeverityLow):      s.SeverityLow,
			string(domain.SeverityMedium):   s.SeverityMedium,
			string(domain.SeverityHigh):     s.SeverityHigh,
			string(domain.SeverityCritical): s.SeverityCritical,
		},
		CreatedAt: s.CreatedAt,
	}
}

// handleDailyStats returns the aggregated snapshot for ?date=YYYY-MM-DD,
// defaulting to today.
func (s *Server) handleDailyStats(c echo.Context) error {
	date := time.Now().UTC()
	if raw := c.QueryParam("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
		}
		date = parsed
	}

	stats, err := s.service.GetDailyStats(c.Request().Context(), date)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, toStatsResponse(stats))
}

// handleAggregateStats forces a recomputation outside the ticker schedule.
func (s *Server) handleAggregateStats(c echo.Context) error {
	stats, err := s.service.AggregateStats(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, toStatsResponse(stats))
}
