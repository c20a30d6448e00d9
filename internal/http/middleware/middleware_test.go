package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nurpe/salesops-contracts/internal/model"
)

type stubParser struct {
	principal model.Principal
	err       error
}

func (s stubParser) Parse(string) (model.Principal, error) {
	return s.principal, s.err
}

func newTestRouter(parser TokenParser, roles ...model.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", Auth(parser), RequireRoles(roles...), func(c *gin.Context) {
		principal, _ := MustPrincipal(c)
		c.String(http.StatusOK, principal.UserID.String())
	})
	return r
}

func TestAuthAndRoles(t *testing.T) {
	admin := model.Principal{UserID: uuid.New(), Role: model.UserRoleAdmin}

	tests := []struct {
		name   string
		header string
		parser stubParser
		roles  []model.UserRole
		want   int
	}{
		{"missing header", "", stubParser{principal: admin}, []model.UserRole{model.UserRoleAdmin}, http.StatusUnauthorized},
		{"not bearer", "Basic abc", stubParser{principal: admin}, []model.UserRole{model.UserRoleAdmin}, http.StatusUnauthorized},
		{"parser error", "Bearer abc", stubParser{err: errors.New("bad")}, []model.UserRole{model.UserRoleAdmin}, http.StatusUnauthorized},
		{"wrong role", "Bearer abc", stubParser{principal: admin}, []model.UserRole{model.UserRoleAgent}, http.StatusForbidden},
		{"allowed", "bearer abc", stubParser{principal: admin}, []model.UserRole{model.UserRoleAgent, model.UserRoleAdmin}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			newTestRouter(tt.parser, tt.roles...).ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("status: want=%d got=%d", tt.want, rec.Code)
			}
			if tt.want == http.StatusOK && rec.Body.String() != admin.UserID.String() {
				t.Fatalf("principal: want=%s got=%s", admin.UserID, rec.Body.String())
			}
		})
	}
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	origin := "http://localhost:5173"
	r := gin.New()
	r.Use(CORS([]string{origin}))
	r.OPTIONS("/contracts", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodOptions, "/contracts", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status: want=%d got=%d", http.StatusNoContent, rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != origin {
		t.Fatalf("allow-origin: want=%q got=%q", origin, got)
	}
}
