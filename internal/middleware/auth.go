package middleware

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
	userRepo "nub.ac.bd/transport/internal/modules/user/repository"
	"nub.ac.bd/transport/pkg/apperror"
	"nub.ac.bd/transport/pkg/response"
)

const UserKey = "user"

type AuthMiddleware struct {
	userRepo   userRepo.UserRepository
	secret     string
	cookieName string
}

func NewAuthMiddleware(userRepo userRepo.UserRepository, secret, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{
		userRepo:   userRepo,
		secret:     secret,
		cookieName: cookieName,
	}
}

// tokenFromRequest looks at the session cookie first, then the bearer
// header, then the "token" query parameter used by WebSocket clients.
func (m *AuthMiddleware) tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(m.cookieName); err == nil && cookie != "" {
		return cookie
	}

	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	return c.Query("token")
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := m.tokenFromRequest(c)
		if tokenString == "" {
			response.ResponseError(c, apperror.Unauthorized("authorization required"))
			return
		}

		token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(m.secret), nil
		})
		if err != nil || !token.Valid {
			response.ResponseError(c, apperror.Unauthorized("invalid or expired token"))
			return
		}

		claims, ok := token.Claims.(*jwt.RegisteredClaims)
		if !ok {
			response.ResponseError(c, apperror.Unauthorized("invalid token claims"))
			return
		}

		userID, err := strconv.ParseUint(claims.Subject, 10, 64)
		if err != nil || userID == 0 {
			response.ResponseError(c, apperror.Unauthorized("invalid token subject"))
			return
		}

		c.Set(response.UserIDKey, uint(userID))
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := response.GetUserID(c)
		if err != nil {
			response.ResponseError(c, err)
			return
		}

		user, err := m.userRepo.FindByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				response.ResponseError(c, apperror.Unauthorized("User not found"))
				return
			}
			response.ResponseError(c, apperror.Internal(err))
			return
		}

		if !user.IsAdmin() {
			response.ResponseError(c, apperror.Forbidden("admin access required"))
			return
		}

		c.Set(UserKey, user)
		c.Next()
	}
}
