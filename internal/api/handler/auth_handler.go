package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/authcore/account-service/internal/api/metrics"
	"github.com/authcore/account-service/internal/core/domain"
	"github.com/authcore/account-service/internal/core/ports"
)

type AuthHandler struct {
	accounts ports.AccountService
}

func NewAuthHandler(accounts ports.AccountService) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

// Register creates a new, unverified account and emails a verification link.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  domain.Account
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	account, err := h.accounts.Register(c.Request().Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserExists):
			metrics.RegistrationsTotal.WithLabelValues("conflict").Inc()
		case errors.Is(err, domain.ErrInvalidUsername):
			metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		}
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues("created").Inc()
	metrics.VerificationEmailsTotal.Inc()
	return c.JSON(http.StatusCreated, account)
}

// Login authenticates a username/password pair and returns a session token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  sessionResponse
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	session, err := h.accounts.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrNotVerified) {
			metrics.LoginsTotal.WithLabelValues("needs_verification").Inc()
			// The username rides along so the client can offer the resend
			// sub-flow without re-entry.
			return c.JSON(http.StatusForbidden, map[string]string{
				"error":    "email not verified",
				"username": req.Username,
			})
		}
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, sessionResponse{Username: session.Username, Token: session.Token})
}

// Verify redeems an emailed verification link and logs the user in.
//
// @Summary      Verify email address
// @Tags         auth
// @Produce      json
// @Param        username  query     string  true  "Username"
// @Param        key       query     string  true  "Verification token"
// @Success      200       {object}  sessionResponse
// @Failure      401       {object}  map[string]string
// @Router       /auth/verify [get]
func (h *AuthHandler) Verify(c echo.Context) error {
	var req verifyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	session, err := h.accounts.Verify(c.Request().Context(), req.Username, req.Key)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidKey) {
			metrics.VerificationsTotal.WithLabelValues("invalid_key").Inc()
		}
		return err
	}

	metrics.VerificationsTotal.WithLabelValues("verified").Inc()
	return c.JSON(http.StatusOK, sessionResponse{Username: session.Username, Token: session.Token})
}

// ResendVerification issues a fresh verification token and re-sends the
// email. The previous token stops working.
//
// @Summary      Resend the verification email
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      resendRequest  true  "Username"
// @Success      200   {object}  statusResponse
// @Failure      401   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /auth/verify/resend [post]
func (h *AuthHandler) ResendVerification(c echo.Context) error {
	var req resendRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.accounts.ResendVerification(c.Request().Context(), req.Username); err != nil {
		return err
	}

	metrics.VerificationEmailsTotal.Inc()
	return c.JSON(http.StatusOK, statusResponse{Status: "sent"})
}

// RequestReset issues a reset token and emails the reset link.
//
// @Summary      Request a password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      resetRequest  true  "Username"
// @Success      200   {object}  statusResponse
// @Failure      404   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /auth/reset [post]
func (h *AuthHandler) RequestReset(c echo.Context) error {
	var req resetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.accounts.RequestReset(c.Request().Context(), req.Username); err != nil {
		metrics.ResetsTotal.WithLabelValues("request", resetResult(err)).Inc()
		return err
	}

	metrics.ResetsTotal.WithLabelValues("request", "ok").Inc()
	return c.JSON(http.StatusOK, statusResponse{Status: "sent"})
}

// CheckReset validates a reset link before the client renders the new
// password form.
//
// @Summary      Check a password reset link
// @Tags         auth
// @Produce      json
// @Param        username  query     string  true  "Username"
// @Param        key       query     string  true  "Reset token"
// @Success      200       {object}  statusResponse
// @Failure      401       {object}  map[string]string
// @Router       /auth/reset/confirm [get]
func (h *AuthHandler) CheckReset(c echo.Context) error {
	var req verifyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.accounts.CheckResetToken(c.Request().Context(), req.Username, req.Key); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statusResponse{Status: "valid"})
}

// CompleteReset redeems a reset token and replaces the password, logging the
// user in on success.
//
// @Summary      Complete a password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      resetCompleteRequest  true  "Reset completion"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/reset/confirm [post]
func (h *AuthHandler) CompleteReset(c echo.Context) error {
	var req resetCompleteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	session, err := h.accounts.CompleteReset(c.Request().Context(), req.Username, req.Key, req.Password1, req.Password2)
	if err != nil {
		metrics.ResetsTotal.WithLabelValues("complete", resetResult(err)).Inc()
		return err
	}

	metrics.ResetsTotal.WithLabelValues("complete", "ok").Inc()
	return c.JSON(http.StatusOK, sessionResponse{Username: session.Username, Token: session.Token})
}

func resetResult(err error) string {
	if errors.Is(err, domain.ErrResetDisabled) {
		return "denied"
	}
	return "invalid"
}
