package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shoenig/go-conceal"

	"github.com/formsdesk/forms-api/internal/api/metrics"
	"github.com/formsdesk/forms-api/internal/api/middleware"
	"github.com/formsdesk/forms-api/internal/core/domain"
	"github.com/formsdesk/forms-api/internal/core/ports"
)

// CookieConfig shapes the session cookie set at login.
type CookieConfig struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

type AuthHandler struct {
	auth     ports.AuthService
	sessions ports.SessionService
	cookie   CookieConfig
	metrics  *metrics.Metrics
}

func NewAuthHandler(auth ports.AuthService, sessions ports.SessionService, cookie CookieConfig, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions, cookie: cookie, metrics: m}
}

type registerRequest struct {
	Username string `json:"username" validate:"required,max=64,printascii"`
	Password string `json:"password" validate:"required,maxbytes=72"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerResponse struct {
	Message string           `json:"message"`
	User    *domain.Identity `json:"user"`
}

type loginResponse struct {
	Message     string           `json:"message"`
	User        *domain.Identity `json:"user"`
	AccessToken string           `json:"access_token"`
}

type userResponse struct {
	User *domain.Identity `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type adminResponse struct {
	Message string           `json:"message"`
	User    *domain.Identity `json:"user"`
}

// Register creates a new user account with the default role.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Username and password"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		h.metrics.RegistrationsTotal.WithLabelValues(metrics.ResultInvalid).Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		h.metrics.RegistrationsTotal.WithLabelValues(metrics.ResultInvalid).Inc()
		return err
	}

	identity, err := h.auth.Register(c.Request().Context(), req.Username, conceal.New(req.Password))
	if err != nil {
		h.metrics.RegistrationsTotal.WithLabelValues(registrationResult(err)).Inc()
		return err
	}

	h.metrics.RegistrationsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	return c.JSON(http.StatusCreated, registerResponse{
		Message: "User registered successfully!",
		User:    identity,
	})
}

// Login verifies a username and password, opens a session and mints a
// bearer token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Header       200   {string}  Set-Cookie  "session cookie"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	ctx := c.Request().Context()
	identity, err := h.auth.Authenticate(ctx, req.Username, conceal.New(req.Password))
	if err != nil {
		h.metrics.LoginsTotal.WithLabelValues(loginResult(err)).Inc()
		return err
	}

	token, err := h.auth.IssueToken(identity)
	if err != nil {
		h.metrics.LoginsTotal.WithLabelValues(metrics.ResultError).Inc()
		return err
	}

	session, err := h.sessions.Create(ctx, identity)
	if err != nil {
		h.metrics.LoginsTotal.WithLabelValues(metrics.ResultError).Inc()
		return err
	}
	h.metrics.SessionsCreatedTotal.Inc()
	h.metrics.LoginsTotal.WithLabelValues(metrics.ResultSuccess).Inc()

	c.SetCookie(h.sessionCookie(session.Token, h.cookie.MaxAge))
	return c.JSON(http.StatusOK, loginResponse{
		Message:     "You have been logged in!",
		User:        identity,
		AccessToken: token,
	})
}

// Profile returns the caller's identity.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     SessionCookie
// @Security     BearerAuth
// @Success      200  {object}  userResponse
// @Failure      401  {object}  map[string]string
// @Router       /auth/profile [get]
func (h *AuthHandler) Profile(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{User: identity})
}

// JWTGuarded returns the identity named by the bearer token.
//
// @Summary      Bearer-only resource
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userResponse
// @Failure      401  {object}  map[string]string
// @Router       /auth/jwt-guarded [get]
func (h *AuthHandler) JWTGuarded(c echo.Context) error {
	return h.Profile(c)
}

// Admin is the admin-only resource.
//
// @Summary      Admin resource
// @Tags         auth
// @Produce      json
// @Security     SessionCookie
// @Security     BearerAuth
// @Success      200  {object}  adminResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /auth/admin [get]
func (h *AuthHandler) Admin(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, adminResponse{Message: "Welcome, Admin!", User: identity})
}

// Logout destroys the caller's session and clears the cookie. Bearer tokens
// are not revocable and are not accepted here.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     SessionCookie
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	session := middleware.SessionFrom(c)
	if session == nil {
		return domain.ErrUnauthenticated
	}

	if err := h.sessions.Destroy(c.Request().Context(), session.Token); err != nil {
		return err
	}
	h.metrics.SessionsDestroyedTotal.Inc()

	c.SetCookie(h.sessionCookie("", -1))
	return c.JSON(http.StatusOK, messageResponse{Message: "You have been logged out successfully."})
}

// sessionCookie builds the session cookie. A negative maxAge expires it and
// zero leaves it a browser-session cookie.
func (h *AuthHandler) sessionCookie(value string, maxAge time.Duration) *http.Cookie {
	cookie := &http.Cookie{
		Name:     h.cookie.Name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if maxAge < 0 {
		cookie.MaxAge = -1
		cookie.Expires = time.Unix(0, 0)
		return cookie
	}
	if maxAge > 0 {
		cookie.MaxAge = int(maxAge / time.Second)
		cookie.Expires = time.Now().Add(maxAge)
	}
	return cookie
}

func loginResult(err error) string {
	if errors.Is(err, domain.ErrInvalidCredentials) {
		return metrics.ResultInvalidCredentials
	}
	return metrics.ResultError
}

func registrationResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrUserExists):
		return metrics.ResultConflict
	case errors.Is(err, domain.ErrValidation):
		return metrics.ResultInvalid
	default:
		return metrics.ResultError
	}
}
