package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"social-insights-service/internal/app/service"
	"social-insights-service/internal/domain"
	"social-insights-service/internal/transport/httpserver/dto"
	"social-insights-service/internal/validator"
	"social-insights-service/pkg/auth"
)

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// AuthHandler serves the login, signup and logout forms.
type AuthHandler struct {
	sessions    *service.SessionService
	validator   *validator.Validator
	cookie      CookieConfig
	allowSignup bool
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(
	sessions *service.SessionService,
	v *validator.Validator,
	cookie CookieConfig,
	allowSignup bool,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		sessions:    sessions,
		validator:   v,
		cookie:      cookie,
		allowSignup: allowSignup,
		logger:      logger,
	}
}

// LoginPage handles GET /login
func (h *AuthHandler) LoginPage(c *fiber.Ctx) error {
	return h.renderForm(c, fiber.StatusOK, "pages/login", "", "")
}

// SignupPage handles GET /signup
func (h *AuthHandler) SignupPage(c *fiber.Ctx) error {
	if !h.allowSignup {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	return h.renderForm(c, fiber.StatusOK, "pages/signup", "", "")
}

// Login handles POST /login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	req, msg := h.parse(c)
	if msg != "" {
		return h.renderForm(c, fiber.StatusBadRequest, "pages/login", req.Email, msg)
	}

	user, err := h.sessions.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return h.renderForm(c, fiber.StatusUnauthorized, "pages/login", req.Email, err.Error())
		}
		return err
	}

	return h.startSession(c, user)
}

// Signup handles POST /signup
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	req, msg := h.parse(c)
	if msg != "" {
		return h.renderForm(c, fiber.StatusBadRequest, "pages/signup", req.Email, msg)
	}

	user, err := h.sessions.Signup(c.UserContext(), req.Email, req.Password)
	switch {
	case errors.Is(err, domain.ErrSignupDisabled):
		return h.renderForm(c, fiber.StatusForbidden, "pages/login", req.Email, err.Error())
	case errors.Is(err, domain.ErrUserExists):
		return h.renderForm(c, fiber.StatusConflict, "pages/signup", req.Email, err.Error())
	case errors.Is(err, auth.ErrWeakPassword):
		return h.renderForm(c, fiber.StatusBadRequest, "pages/signup", req.Email, err.Error())
	case err != nil:
		return err
	}

	return h.startSession(c, user)
}

// Logout handles POST /logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.Redirect("/login", fiber.StatusSeeOther)
}

func (h *AuthHandler) parse(c *fiber.Ctx) (dto.CredentialsRequest, string) {
	var req dto.CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return req, "invalid form"
	}
	if err := h.validator.Validate(&req); err != nil {
		return req, err.Error()
	}

	return req, ""
}

func (h *AuthHandler) startSession(c *fiber.Ctx, user *domain.User) error {
	token, expires, err := h.sessions.Issue(user)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	h.logger.Info("session started", zap.String("user_id", user.ID))

	return c.Redirect("/dashboard", fiber.StatusSeeOther)
}

func (h *AuthHandler) renderForm(c *fiber.Ctx, status int, page, email, msg string) error {
	return c.Status(status).Render(page, fiber.Map{
		"Title":       "Sign in",
		"Email":       email,
		"Error":       msg,
		"AllowSignup": h.allowSignup,
	}, "layouts/base")
}
