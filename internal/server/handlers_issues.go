package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/akm-xdd/Trackly-core/internal/app"
	"github.com/akm-xdd/Trackly-core/internal/domain"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type createIssueRequest struct {
	Title       string  `json:"title" validate:"required,max=300"`
	Description string  `json:"description" validate:"max=10000"`
	Severity    string  `json:"severity" validate:"required,oneof=LOW MEDIUM HIGH CRITICAL"`
	AssignedTo  *string `json:"assigned_to" validate:"omitempty,uuid"`
	FileURL     *string `json:"file_url" validate:"omitempty,url"`
}

type updateIssueRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=300"`
	Description *string `json:"description" validate:"omitempty,max=10000"`
	Severity    *string `json:"severity" validate:"omitempty,oneof=LOW MEDIUM HIGH CRITICAL"`
	Status      *string `json:"status" validate:"omitempty,oneof=OPEN TRIAGED IN_PROGRESS DONE"`
	AssignedTo  *string `json:"assigned_to" validate:"omitempty,uuid"`
	FileURL     *string `json:"file_url" validate:"omitempty,url"`
}

type addCommentRequest struct {
	Body string `json:"body" validate:"required,max=5000"`
}

type issueResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Severity    string    `json:"severity"`
	Status      string    `json:"status"`
	CreatedBy   string    `json:"created_by"`
	AssignedTo  *string   `json:"assigned_to"`
	FileURL     *string   `json:"file_url"`
	UpdatedBy   *string   `json:"updated_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type commentResponse struct {
	ID        string    `json:"id"`
	IssueID   string    `json:"issue_id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func toIssueResponse(i *domain.Issue) issueResponse {
	resp := issueResponse{
		ID:          i.ID.String(),
		Title:       i.Title,
		Description: i.Description,
		Severity:    string(i.Severity),
		Status:      string(i.Status),
		CreatedBy:   i.CreatedBy.String(),
		FileURL:     i.FileURL,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
	if i.AssignedTo != nil {
		s := i.AssignedTo.String()
		resp.AssignedTo = &s
	}
	if i.UpdatedBy != nil {
		s := i.UpdatedBy.String()
		resp.UpdatedBy = &s
	}
	return resp
}

func toCommentResponse(cm *domain.Comment) commentResponse {
	return commentResponse{
		ID:        cm.ID.String(),
		IssueID:   cm.IssueID.String(),
		AuthorID:  cm.AuthorID.String(),
		Body:      cm.Body,
		CreatedAt: cm.CreatedAt,
	}
}

func pagination(c echo.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.QueryParam("offset"))
	if offset < 0 {
		offset = 0
	}
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return offset, limit
}

func parseOptionalUUID(s *string) (*uuid.UUID, error) {
	if s == nil {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (s *Server) handleCreateIssue(c echo.Context) error {
	var req createIssueRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	assignedTo, err := parseOptionalUUID(req.AssignedTo)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid assigned_to")
	}

	issue, err := s.service.CreateIssue(c.Request().Context(), currentIdentity(c), app.CreateIssueInput{
		Title:       req.Title,
		Description: req.Description,
		Severity:    domain.IssueSeverity(req.Severity),
		AssignedTo:  assignedTo,
		FileURL:     req.FileURL,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, toIssueResponse(issue))
}

func (s *Server) handleListIssues(c echo.Context) error {
	offset, limit := pagination(c)

	var filter domain.IssueFilter
	if status := c.QueryParam("status"); status != "" {
		st := domain.IssueStatus(status)
		if !st.Valid() {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid status filter")
		}
		filter.Status = &st
	}

	issues, err := s.service.ListIssues(c.Request().Context(), currentIdentity(c), filter, offset, limit)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, toIssueResponses(issues))
}

func (s *Server) handleListUserIssues(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	offset, limit := pagination(c)

	issues, err := s.service.ListUserIssues(c.Request().Context(), currentIdentity(c), userID, offset, limit)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, toIssueResponses(issues))
}

func toIssueResponses(issues []*domain.Issue) []issueResponse {
	out := make([]issueResponse, 0, len(issues))
	for _, i := range issues {
		out = append(out, toIssueResponse(i))
	}
	return out
}

func (s *Server) handleGetIssue(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid issue id")
	}

	issue, err := s.service.GetIssue(c.Request().Context(), currentIdentity(c), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, toIssueResponse(issue))
}

func (s *Server) handleUpdateIssue(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid issue id")
	}

	var req updateIssueRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	assignedTo, err := parseOptionalUUID(req.AssignedTo)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid assigned_to")
	}

	update := domain.IssueUpdate{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  assignedTo,
		FileURL:     req.FileURL,
	}
	if req.Severity != nil {
		sev := domain.IssueSeverity(*req.Severity)
		update.Severity = &sev
	}
	if req.Status != nil {
		st := domain.IssueStatus(*req.Status)
		update.Status = &st
	}

	issue, err := s.service.UpdateIssue(c.Request().Context(), currentIdentity(c), id, update)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, toIssueResponse(issue))
}

func (s *Server) handleDeleteIssue(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid issue id")
	}

	if err := s.service.DeleteIssue(c.Request().Context(), currentIdentity(c), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleAddComment(c echo.Context) error {
	issueID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid issue id")
	}

	var req addCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	comment, err := s.service.AddComment(c.Request().Context(), currentIdentity(c), issueID, req.Body)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, toCommentResponse(comment))
}

func (s *Server) handleListComments(c echo.Context) error {
	issueID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid issue id")
	}

	comments, err := s.service.ListComments(c.Request().Context(), currentIdentity(c), issueID)
	if err != nil {
		return httpError(err)
	}

	out := make([]commentResponse, 0, len(comments))
	for _, cm := range comments {
		out = append(out, toCommentResponse(cm))
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleCountIssues(c echo.Context) error {
	count, err := s.service.CountIssues(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"total": count})
}

func (s *Server) handleCountByStatus(c echo.Context) error {
	counts, err := s.service.CountIssuesByStatus(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, counts)
}

func (s *Server) handleCountBySeverity(c echo.Context) error {
	counts, err := s.service.CountIssuesBySeverity(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, counts)
}
