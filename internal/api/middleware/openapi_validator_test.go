package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func mustValidator(t *testing.T) gin.HandlerFunc {
	t.Helper()
	mw, err := NewOpenAPIValidator("/api/v1")
	if err != nil {
		t.Fatalf("NewOpenAPIValidator: %v", err)
	}
	return mw
}

func TestNormalizeValidationPath(t *testing.T) {
	testCases := []struct {
		name     string
		basePath string
		path     string
		want     string
	}{
		{name: "strip prefix", basePath: "/api/v1", path: "/api/v1/deeds/D001", want: "/deeds/D001"},
		{name: "root path", basePath: "/api/v1", path: "/api/v1", want: "/"},
		{name: "no match", basePath: "/api/v1", path: "/metrics", want: "/metrics"},
		{name: "empty base", basePath: "", path: "/lands", want: "/lands"},
		{name: "trailing slash base", basePath: "api/v1/", path: "/api/v1/stats", want: "/stats"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := normalizeValidationPath(normalizeBasePath(tc.basePath), tc.path)
			if got != tc.want {
				t.Fatalf("normalizeValidationPath mismatch: got %q want %q", got, tc.want)
			}
		})
	}
}

func newValidatedRouter(t *testing.T) *gin.Engine {
	t.Helper()
	router := gin.New()
	router.Use(mustValidator(t))
	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }
	router.POST("/api/v1/lands", ok)
	router.PUT("/api/v1/deeds/:deedNumber", ok)
	router.GET("/api/v1/audit-logs", ok)
	router.GET("/metrics", ok)
	return router
}

func TestOpenAPIValidator(t *testing.T) {
	router := newValidatedRouter(t)

	testCases := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{
			name:   "valid land",
			method: http.MethodPost,
			path:   "/api/v1/lands",
			body:   `{"landNumber":"L1","district":"Colombo","division":"Dehiwala","area":12.5,"areaUnit":"Perches"}`,
			want:   http.StatusNoContent,
		},
		{
			name:   "land missing district",
			method: http.MethodPost,
			path:   "/api/v1/lands",
			body:   `{"landNumber":"L1","division":"Dehiwala","area":12.5,"areaUnit":"Perches"}`,
			want:   http.StatusBadRequest,
		},
		{
			name:   "land with non-positive area",
			method: http.MethodPost,
			path:   "/api/v1/lands",
			body:   `{"landNumber":"L1","district":"Colombo","division":"Dehiwala","area":0,"areaUnit":"Perches"}`,
			want:   http.StatusBadRequest,
		},
		{
			name:   "land area as string",
			method: http.MethodPost,
			path:   "/api/v1/lands",
			body:   `{"landNumber":"L1","district":"Colombo","division":"Dehiwala","area":"ten","areaUnit":"Perches"}`,
			want:   http.StatusBadRequest,
		},
		{
			name:   "unknown deed status",
			method: http.MethodPut,
			path:   "/api/v1/deeds/D001",
			body:   `{"landNumber":"L1","ownerNic":"N1","registrationDate":"2024-01-01","deedType":"Sale","status":"ARCHIVED"}`,
			want:   http.StatusBadRequest,
		},
		{
			name:   "audit limit out of range",
			method: http.MethodGet,
			path:   "/api/v1/audit-logs?limit=0",
			want:   http.StatusBadRequest,
		},
		{
			name:   "audit limit valid",
			method: http.MethodGet,
			path:   "/api/v1/audit-logs?limit=25",
			want:   http.StatusNoContent,
		},
		{
			name:   "path outside document",
			method: http.MethodGet,
			path:   "/metrics",
			want:   http.StatusNoContent,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var body *bytes.Buffer
			if tc.body != "" {
				body = bytes.NewBufferString(tc.body)
			} else {
				body = &bytes.Buffer{}
			}
			req := httptest.NewRequest(tc.method, tc.path, body)
			if tc.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)

			if resp.Code != tc.want {
				t.Fatalf("status = %d, want %d body=%s", resp.Code, tc.want, resp.Body.String())
			}
		})
	}
}

func TestOpenAPIValidatorKeepsBodyForHandler(t *testing.T) {
	router := gin.New()
	router.Use(mustValidator(t))
	var got string
	router.POST("/api/v1/owners", func(c *gin.Context) {
		var req struct {
			NIC string `json:"nic"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Status(http.StatusTeapot)
			return
		}
		got = req.NIC
		c.Status(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/owners", bytes.NewBufferString(`{"nic":"200012345678","fullName":"Kumari"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", resp.Code, http.StatusCreated)
	}
	if got != "200012345678" {
		t.Fatalf("handler saw nic %q", got)
	}
}
