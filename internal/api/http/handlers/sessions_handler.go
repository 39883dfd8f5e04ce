package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/clinic-service/internal/api/dto"
	"github.com/spec-kit/clinic-service/internal/domain"
	"github.com/spec-kit/clinic-service/internal/service"
	apperrors "github.com/spec-kit/clinic-service/pkg/util"
)

// SessionsHandler exposes session lifecycle endpoints.
type SessionsHandler struct {
	users    *service.UserService
	sessions *service.SessionService
}

// NewSessionsHandler constructs handler.
func NewSessionsHandler(userService *service.UserService, sessionService *service.SessionService) *SessionsHandler {
	return &SessionsHandler{users: userService, sessions: sessionService}
}

// Login handles POST /session/login: credential check plus session issuance.
func (h *SessionsHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	user, err := h.users.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	session, err := h.sessions.Create(c.Context(), user, c.Get("User-Agent"), c.IP())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": sessionResponse(session, user)})
}

// Validate handles POST /session/validate.
func (h *SessionsHandler) Validate(c *fiber.Ctx) error {
	token, err := h.sessionToken(c)
	if err != nil {
		return err
	}
	session, err := h.sessions.Validate(c.Context(), token)
	if err != nil {
		return err
	}
	user, err := h.users.GetUser(c.Context(), session.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ValidateResponse{
		Valid:     true,
		User:      userResponse(user),
		ExpiresAt: session.ExpiresAt,
	}})
}

// Refresh handles POST /session/refresh. Extends expiry, token unchanged.
func (h *SessionsHandler) Refresh(c *fiber.Ctx) error {
	token, err := h.sessionToken(c)
	if err != nil {
		return err
	}
	session, err := h.sessions.Refresh(c.Context(), token)
	if err != nil {
		return err
	}
	user, err := h.users.GetUser(c.Context(), session.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": sessionResponse(session, user)})
}

// Logout handles POST /session/logout. Idempotent.
func (h *SessionsHandler) Logout(c *fiber.Ctx) error {
	token, err := h.sessionToken(c)
	if err != nil {
		return err
	}
	if err := h.sessions.Invalidate(c.Context(), token); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "logged out"}})
}

// sessionToken reads the token from the request body, falling back to the
// bearer header.
func (h *SessionsHandler) sessionToken(c *fiber.Ctx) (string, error) {
	var req dto.SessionTokenRequest
	if err := c.BodyParser(&req); err == nil && req.SessionToken != "" {
		return req.SessionToken, nil
	}
	authHeader := c.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && parts[1] != "" {
		return parts[1], nil
	}
	return "", apperrors.NewValidationError("sessionToken required", nil)
}

func sessionResponse(session *domain.Session, user *domain.User) dto.SessionResponse {
	return dto.SessionResponse{
		SessionToken: session.Token,
		ExpiresAt:    session.ExpiresAt,
		User:         userResponse(user),
	}
}
