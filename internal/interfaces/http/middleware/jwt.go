package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/infrastructure/auth"
)

// JWT context keys and header constants
const (
	JWTClaimsKey       = "jwt_claims"
	JWTCustomerGUIDKey = "jwt_customer_guid"
	AuthHeaderKey      = "Authorization"
	BearerPrefix       = "Bearer "
)

// OptionalJWTAuth extracts and validates a bearer token when present. The
// storefront serves guests, so a missing or invalid token never rejects the
// request; it only leaves the request anonymous. A valid token attaches the
// customer principal to the request context for the identity detectors.
func OptionalJWTAuth(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" || !strings.HasPrefix(authHeader, BearerPrefix) {
			c.Next()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
		if tokenString == "" {
			c.Next()
			return
		}

		claims, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			c.Next()
			return
		}

		guid, err := uuid.Parse(claims.CustomerGUID)
		if err != nil {
			c.Next()
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTCustomerGUIDKey, guid.String())
		c.Request = c.Request.WithContext(auth.ContextWithPrincipal(c.Request.Context(), guid))

		c.Next()
	}
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}
