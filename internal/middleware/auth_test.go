package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func adminTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
	return c, w
}

func TestAdminAuthRejectsMissingFlag(t *testing.T) {
	c, w := adminTestContext(t)

	AdminAuth()(c)

	if !c.IsAborted() {
		t.Fatal("request without an identity must be aborted")
	}
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestAdminAuthRejectsNonAdmin(t *testing.T) {
	c, w := adminTestContext(t)
	c.Set("isAdmin", false)

	AdminAuth()(c)

	if !c.IsAborted() {
		t.Fatal("non-admin user must be aborted")
	}
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestAdminAuthPassesAdmin(t *testing.T) {
	c, _ := adminTestContext(t)
	c.Set("isAdmin", true)

	AdminAuth()(c)

	if c.IsAborted() {
		t.Fatal("admin user must pass through")
	}
}
