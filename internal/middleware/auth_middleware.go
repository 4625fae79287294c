package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rahul/acadcore/internal/app/models/dto"
	"github.com/rahul/acadcore/internal/identity"
	"github.com/rahul/acadcore/internal/pkg/apperrors"
	"github.com/rahul/acadcore/internal/session"
)

const sessionKey = "session"

// AuthMiddleware resolves the bearer token into a session.Session and makes
// it available to handlers. Repositories still re-check the policy with this
// session; the middleware only authenticates.
type AuthMiddleware struct {
	jwtSecret string
	resolver  *session.Resolver
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtSecret string, resolver *session.Resolver) *AuthMiddleware {
	return &AuthMiddleware{jwtSecret: jwtSecret, resolver: resolver}
}

// SessionRequired validates the bearer token, resolves the role from the
// profiles collection and stores the session in the request context. A
// session without a profile row passes through with an unknown role so the
// role-selection flow stays reachable.
func (m *AuthMiddleware) SessionRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "Authorization header missing")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			abortUnauthorized(c, "Authorization header must use the Bearer scheme")
			return
		}

		claims, err := identity.DecodeAccessToken(tokenString, m.jwtSecret)
		if err != nil {
			if errors.Is(err, apperrors.ErrTokenExpired) {
				abortUnauthorized(c, "Token has expired")
				return
			}
			abortUnauthorized(c, "Invalid token")
			return
		}

		sess, err := m.resolver.ResolveUser(c.Request.Context(), claims.Subject, claims.Email)
		if err != nil {
			HandleAPIError(c, err)
			c.Abort()
			return
		}

		c.Set(sessionKey, sess)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, details string) {
	detail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").WithDetails(details)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))
}

// SessionFrom extracts the resolved session placed by SessionRequired.
func SessionFrom(c *gin.Context) session.Session {
	if v, ok := c.Get(sessionKey); ok {
		if sess, ok := v.(session.Session); ok {
			return sess
		}
	}
	return session.Session{}
}
