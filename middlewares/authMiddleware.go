package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/melsolucoesdeinformatica-prog/melfitness-backend/config"
	"github.com/melsolucoesdeinformatica-prog/melfitness-backend/utils"
)

func bearerToken(c *gin.Context) string {
	if token := c.Request.Header.Get("token"); token != "" {
		return token
	}
	auth := c.Request.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// AuthMiddleware resolves the owner session from the request token. When
// AUTH_REQUIRED is off a missing token passes through untouched, matching
// the installs that still run the dashboard without logins. A token that is
// present but invalid is always rejected.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// The login route is how tokens are obtained in the first place.
		if c.Request.URL.Path == "/api/login" {
			c.Next()
			return
		}

		token := bearerToken(c)

		if token == "" {
			if config.AuthRequired() {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
				c.Abort()
				return
			}
			c.Next()
			return
		}

		validate, err := utils.JwtValidate(token)
		if err != nil || !validate.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		claim, ok := validate.Claims.(*utils.JwtCustomClaim)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		ctx := utils.SetTokenInContext(c.Request.Context(), token)
		ctx = utils.SetOwnerIdInContext(ctx, claim.ID)
		ctx = utils.SetOwnerNameInContext(ctx, claim.Nome)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// CorrelationMiddleware tags every request with a correlation id so log
// lines from the fan-out queries can be tied back to one request.
func CorrelationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cid := c.Request.Header.Get("X-Correlation-Id")
		if cid == "" {
			cid = uuid.NewString()
		}
		ctx := utils.SetCorrelationIdInContext(c.Request.Context(), cid)
		c.Request = c.Request.WithContext(ctx)
		c.Writer.Header().Set("X-Correlation-Id", cid)
		c.Next()
	}
}
