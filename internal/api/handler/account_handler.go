package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/authcore/account-service/internal/core/ports"
)

// AccountHandler serves session-authenticated account endpoints.
type AccountHandler struct {
	store ports.AccountStore
}

func NewAccountHandler(store ports.AccountStore) *AccountHandler {
	return &AccountHandler{store: store}
}

// Me returns the account behind the presented session token.
//
// @Summary      Current account
// @Tags         account
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Account
// @Failure      401  {object}  map[string]string
// @Router       /auth/me [get]
func (h *AccountHandler) Me(c echo.Context) error {
	username, _ := c.Get("username").(string)
	if username == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	account, err := h.store.FindByUsername(c.Request().Context(), username)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, account)
}
