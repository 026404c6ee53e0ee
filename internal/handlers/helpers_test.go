package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testContext(t *testing.T) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c
}

func TestIsAdminRequest(t *testing.T) {
	c := testContext(t)
	if isAdminRequest(c) {
		t.Fatal("request without an identity must not be admin")
	}

	c.Set("isAdmin", false)
	if isAdminRequest(c) {
		t.Fatal("non-admin flag must not be admin")
	}

	c.Set("isAdmin", true)
	if !isAdminRequest(c) {
		t.Fatal("admin flag must be recognised")
	}
}

func TestCurrentUserID(t *testing.T) {
	c := testContext(t)
	if _, ok := currentUserID(c); ok {
		t.Fatal("missing identity must not resolve")
	}

	want := primitive.NewObjectID()
	c.Set("userId", want)
	got, ok := currentUserID(c)
	if !ok || got != want {
		t.Fatalf("expected %s, got %s (ok=%v)", want.Hex(), got.Hex(), ok)
	}
}
