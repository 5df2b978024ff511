package httpx

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
	log.SetOutput(io.Discard)
}

func TestRequestID_PropagatesHeaderIntoContext(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Logger())

	var seen string
	r.GET("/ping", func(c *gin.Context) {
		seen = RequestIDFrom(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderRequestID, "rid-123")
	r.ServeHTTP(w, req)

	if seen != "rid-123" {
		t.Fatalf("context rid=%q, want rid-123", seen)
	}
	if got := w.Header().Get(HeaderRequestID); got != "rid-123" {
		t.Fatalf("response rid=%q", got)
	}
}

func TestRequestID_GeneratesWhenMissing(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if w.Header().Get(HeaderRequestID) == "" {
		t.Fatalf("expected a generated request id")
	}
}

func TestRequestIDFrom_EmptyContext(t *testing.T) {
	a := RequestIDFrom(context.Background())
	b := RequestIDFrom(context.Background())
	if a == "" || a == b {
		t.Fatalf("expected distinct fresh ids, got %q and %q", a, b)
	}
}
