package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"nub.ac.bd/transport/internal/entity"
	"nub.ac.bd/transport/pkg/response"
)

const testSecret = "test-secret"

type stubUserRepo struct {
	users map[uint]*entity.User
}

func (r *stubUserRepo) Create(context.Context, *entity.User) error { return nil }
func (r *stubUserRepo) FindByEmail(context.Context, string) (*entity.User, error) {
	return nil, gorm.ErrRecordNotFound
}
func (r *stubUserRepo) FindAll(context.Context) ([]*entity.User, error) { return nil, nil }
func (r *stubUserRepo) Update(context.Context, *entity.User) error     { return nil }
func (r *stubUserRepo) FindByID(_ context.Context, id uint) (*entity.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func signToken(t *testing.T, subject string, secret string, ttl time.Duration) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	repo := &stubUserRepo{users: map[uint]*entity.User{
		1: {Base: entity.Base{ID: 1}, Role: entity.RoleAdmin},
		2: {Base: entity.Base{ID: 2}, Role: entity.RoleStudent},
	}}
	m := NewAuthMiddleware(repo, testSecret, "access_token")

	r := gin.New()
	r.GET("/me", m.RequireAuth(), func(c *gin.Context) {
		id, _ := response.GetUserID(c)
		c.String(http.StatusOK, strconv.FormatUint(uint64(id), 10))
	})
	r.GET("/admin", m.RequireAuth(), m.RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func do(r *gin.Engine, path string, mutate func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if mutate != nil {
		mutate(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	r := newRouter()

	t.Run("missing token", func(t *testing.T) {
		w := do(r, "/me", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"authorization required"}`, w.Body.String())
	})

	t.Run("cookie", func(t *testing.T) {
		token := signToken(t, "2", testSecret, time.Hour)
		w := do(r, "/me", func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
		})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Body.String())
	})

	t.Run("bearer header", func(t *testing.T) {
		token := signToken(t, "1", testSecret, time.Hour)
		w := do(r, "/me", func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+token)
		})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token := signToken(t, "1", "other", time.Hour)
		w := do(r, "/me", func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+token)
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired", func(t *testing.T) {
		token := signToken(t, "1", testSecret, -time.Minute)
		w := do(r, "/me?token="+token, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("non numeric subject", func(t *testing.T) {
		token := signToken(t, "abc", testSecret, time.Hour)
		w := do(r, "/me?token="+token, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	r := newRouter()

	cases := []struct {
		name    string
		subject string
		want    int
	}{
		{"admin", "1", http.StatusNoContent},
		{"student", "2", http.StatusForbidden},
		{"vanished user", "99", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			token := signToken(t, tc.subject, testSecret, time.Hour)
			w := do(r, "/admin", func(req *http.Request) {
				req.Header.Set("Authorization", "Bearer "+token)
			})
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := do(r, "/ping", nil)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	w = do(r, "/ping", func(req *http.Request) { req.Header.Set(RequestIDHeader, "abc") })
	assert.Equal(t, "abc", w.Header().Get(RequestIDHeader))
}
