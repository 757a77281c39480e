package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/salescribe-team/salescribe/internal/domain/entities"
	"github.com/salescribe-team/salescribe/pkg/jwt"
)

func roleContext(role string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/billing/cancel", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != "" {
		c.Set(ClaimsContextKey, &jwt.Claims{UserID: uuid.New(), Role: role})
	}
	return c, rec
}

func TestRequireRole_AllowsMatchingRole(t *testing.T) {
	m := &AuthMiddleware{}
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	c, rec := roleContext(string(entities.RoleManager))
	if err := m.RequireRole(entities.RoleManager)(next)(c); err != nil {
		t.Fatalf("expected manager to pass, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRequireRole_RejectsOtherRole(t *testing.T) {
	m := &AuthMiddleware{}
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	c, _ := roleContext(string(entities.RoleSalesRepresentative))
	err := m.RequireRole(entities.RoleManager)(next)(c)

	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for sales representative, got %v", err)
	}
}

func TestRequireRole_RejectsMissingClaims(t *testing.T) {
	m := &AuthMiddleware{}
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	c, _ := roleContext("")
	err := m.RequireRole(entities.RoleManager)(next)(c)

	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without claims, got %v", err)
	}
}
