package middleware

import (
	"course_exam_backend/internal/config"
	"course_exam_backend/internal/model"
	"course_exam_backend/internal/util"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func testConfig() *config.Config {
	return &config.Config{JWT: config.JWTConfig{Secret: "middleware-secret", ExpireTime: time.Hour}}
}

func token(t *testing.T, cfg *config.Config, role model.UserRole) string {
	t.Helper()
	u := &model.User{Email: "m@example.com", Role: role}
	u.ID = 42
	tok, err := util.GenerateJWT(u, cfg.JWT.Secret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		var id uint
		if u := util.GetUserFromContext(c); u != nil {
			id = u.UserID
		}
		c.JSON(http.StatusOK, gin.H{"user": id})
	})
	r.GET("/", handlers...)
	return r
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	cfg := testConfig()
	r := newRouter(AuthMiddleware(cfg))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if w := serve(r, req); w.Code != http.StatusUnauthorized {
		t.Errorf("no token = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	if w := serve(r, req); w.Code != http.StatusUnauthorized {
		t.Errorf("bad token = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, cfg, model.Student))
	if w := serve(r, req); w.Code != http.StatusOK {
		t.Errorf("header token = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/?token="+token(t, cfg, model.Student), nil)
	if w := serve(r, req); w.Code != http.StatusOK {
		t.Errorf("query token = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token(t, cfg, model.Student)})
	if w := serve(r, req); w.Code != http.StatusOK {
		t.Errorf("cookie token = %d", w.Code)
	}
}

func TestTryAuthMiddleware(t *testing.T) {
	cfg := testConfig()
	r := newRouter(TryAuthMiddleware(cfg))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w := serve(r, req)
	if w.Code != http.StatusOK || w.Body.String() != `{"user":0}` {
		t.Errorf("anonymous = %d %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, cfg, model.Student))
	w = serve(r, req)
	if w.Body.String() != `{"user":42}` {
		t.Errorf("authenticated = %s", w.Body.String())
	}
}

func TestRoleMiddleware(t *testing.T) {
	cfg := testConfig()
	r := newRouter(AuthMiddleware(cfg), RoleMiddleware(model.Teacher))

	cases := map[model.UserRole]int{
		model.Student: http.StatusForbidden,
		model.Teacher: http.StatusOK,
		model.Admin:   http.StatusOK,
	}
	for role, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token(t, cfg, role))
		if w := serve(r, req); w.Code != want {
			t.Errorf("%s = %d, want %d", role, w.Code, want)
		}
	}
}

func TestRequestID(t *testing.T) {
	r := newRouter(RequestID(), AccessLog())

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Header().Get(util.HeaderRequestID) == "" {
		t.Error("request id not generated")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(util.HeaderRequestID, "upstream-id")
	w = serve(r, req)
	if got := w.Header().Get(util.HeaderRequestID); got != "upstream-id" {
		t.Errorf("request id = %q, want upstream-id", got)
	}
}
