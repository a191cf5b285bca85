package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/akm-xdd/Trackly-core/internal/domain"
)

type updateUserRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,max=200"`
	Role     *string `json:"role" validate:"omitempty,oneof=ADMIN MAINTAINER REPORTER"`
}

func (s *Server) handleCurrentUser(c echo.Context) error {
	identity := currentIdentity(c)

	user, err := s.service.GetUser(c.Request().Context(), identity, identity.UserID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

func (s *Server) handleListUsers(c echo.Context) error {
	offset, limit := pagination(c)

	users, err := s.service.ListUsers(c.Request().Context(), currentIdentity(c), offset, limit)
	if err != nil {
		return httpError(err)
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	user, err := s.service.GetUser(c.Request().Context(), currentIdentity(c), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

func (s *Server) handleUpdateUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	var role *domain.Role
	if req.Role != nil {
		r := domain.Role(*req.Role)
		role = &r
	}

	user, err := s.service.UpdateUser(c.Request().Context(), currentIdentity(c), id, req.FullName, role)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

func (s *Server) handleDeleteUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	if err := s.service.DeleteUser(c.Request().Context(), currentIdentity(c), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
