package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/shopfront/shopfront/internal/domain/auth"
)

type signUpPayload struct {
	Name            string `json:"name" validate:"required,min=3,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

type signInPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type adminResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type sessionResponse struct {
	AdminID   int64     `json:"adminId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func toAdminResponse(a *auth.Admin) adminResponse {
	return adminResponse{ID: a.ID, Name: a.Name, Email: a.Email}
}

func (h *Handler) signUp(c echo.Context) error {
	var payload signUpPayload
	if err := h.bindAndValidate(c, &payload); err != nil {
		return h.respondError(c, err)
	}

	admin, err := h.auth.SignUp(c.Request().Context(), payload.Name, payload.Email, payload.Password)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"user": toAdminResponse(admin)})
}

func (h *Handler) signIn(c echo.Context) error {
	var payload signInPayload
	if err := h.bindAndValidate(c, &payload); err != nil {
		return h.respondError(c, err)
	}

	token, admin, err := h.auth.SignIn(c.Request().Context(), payload.Email, payload.Password)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user":  toAdminResponse(admin),
	})
}

// signOut exists for client symmetry. Sessions are stateless tokens, so the
// server has nothing to revoke.
func (h *Handler) signOut(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// session reports the identity behind the bearer token, or null when the
// request carries no valid token. It never fails with 401 so clients can
// probe their sign-in state without error handling.
func (h *Handler) session(c echo.Context) error {
	token, ok := bearerToken(c.Request().Header.Get("Authorization"))
	if !ok {
		return c.JSON(http.StatusOK, echo.Map{"session": nil})
	}

	sess, err := h.auth.Verify(token)
	if err != nil {
		return c.JSON(http.StatusOK, echo.Map{"session": nil})
	}
	return c.JSON(http.StatusOK, echo.Map{"session": sessionResponse{
		AdminID:   sess.AdminID,
		Name:      sess.Name,
		Email:     sess.Email,
		ExpiresAt: sess.ExpiresAt,
	}})
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}
