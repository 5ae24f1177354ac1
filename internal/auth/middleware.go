package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"workforce_crm/internal/models"
	"workforce_crm/internal/rbac"
)

const (
	claimsKey   = "claims"
	identityKey = "identity"
	userKey     = "user"
)

// Claims represents the JWT claims structure.
type Claims struct {
	UserID string    `json:"uid"`
	Email  string    `json:"email"`
	Role   rbac.Role `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for user valid for ttl from now.
func IssueToken(secret string, user models.User, ttl time.Duration, now time.Time) (string, time.Time, error) {
	expires := now.Add(ttl)
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return tok, expires, nil
}

// ParseToken validates the signature and expiry and returns the claims.
func ParseToken(secret, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, errors.New("invalid claims")
	}
	return claims, nil
}

// JWT returns a Gin middleware that validates JWT tokens from
// either the Authorization header or a "token" cookie and verifies
// that the user still exists. The stored role wins over the token's.
func JWT(db *gorm.DB, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := c.GetHeader("Authorization")
		if tokenStr == "" {
			if cookie, err := c.Cookie("token"); err == nil {
				tokenStr = "Bearer " + cookie
			}
		}
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		tokenStr = strings.TrimSpace(strings.TrimPrefix(tokenStr, "Bearer "))
		claims, err := ParseToken(secret, tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		var user models.User
		if err := db.WithContext(c.Request.Context()).Where("id = ?", claims.UserID).First(&user).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}

		c.Set(claimsKey, claims)
		SetUser(c, user)
		c.Next()
	}
}

// SetUser attaches user as the caller of the current request.
func SetUser(c *gin.Context, user models.User) {
	c.Set(identityKey, user.Identity())
	c.Set(userKey, user)
}

// Caller returns the identity the JWT middleware stored on the context.
func Caller(c *gin.Context) (rbac.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return rbac.Identity{}, false
	}
	id, ok := v.(rbac.Identity)
	return id, ok
}

// CurrentUser returns the user row loaded by the JWT middleware.
func CurrentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return models.User{}, false
	}
	u, ok := v.(models.User)
	return u, ok
}

// RequireAdmin rejects non-admin callers with 403.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := Caller(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if !id.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden", "missing": "admin"})
			return
		}
		c.Next()
	}
}
