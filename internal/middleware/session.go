package middleware

import (
	"net/http"
	"strings"

	"taskpad/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
)

const SessionCookieName = "session_token"

const contextUserIDKey = "user_id"

// SessionMiddleware resolves the caller's identity from a bearer token or
// the session cookie and stores it in the request context. A missing,
// malformed, or expired token is not an error here: the request simply
// carries no identity, and RequireSession decides whether that matters.
func SessionMiddleware(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		tokenStr := extractToken(c)
		if tokenStr == "" {
			c.Next()
			return
		}

		userID, ok := verifyToken(tokenStr, key)
		if ok {
			c.Set(contextUserIDKey, userID)
		}
		c.Next()
	}
}

// RequireSession aborts with 401 when no identity was resolved. Protected
// handlers behind it never touch the store for unauthenticated requests.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUserID(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Unauthorized",
			})
			return
		}
		c.Next()
	}
}

// CurrentUserID returns the resolved identity of the caller. The boolean
// is false for unauthenticated requests.
func CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(contextUserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	if cookie, err := c.Cookie(SessionCookieName); err == nil {
		return cookie
	}
	return ""
}

// verifyToken is a pure check of signature, expiry, and issuer. The
// embedded user id is trusted without a store lookup, so a token stays
// valid until expiry even if the account changes underneath it.
func verifyToken(tokenStr string, key []byte) (uuid.UUID, bool) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return key, nil
	}, jwt.WithIssuer(services.TokenIssuer), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return uuid.Nil, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, false
	}

	idStr, ok := claims["user_id"].(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.FromString(idStr)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
