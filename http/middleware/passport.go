package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/tnqbao/gau-drs-provider/infra"
)

// PassportMiddleware accepts a GA4GH passport posted in the form data and
// records its subject claim for request logging. Verification is a stub:
// signature and visa checks happen upstream, this service only decodes.
func PassportMiddleware(logger *infra.LoggerClient) gin.HandlerFunc {
	parser := jwt.NewParser()

	return func(c *gin.Context) {
		ctx := c.Request.Context()

		passport := c.PostForm("passports")
		if passport == "" {
			c.Next()
			return
		}

		claims := jwt.MapClaims{}
		if _, _, err := parser.ParseUnverified(passport, claims); err != nil {
			logger.WarningWithContextf(ctx, "[Passport] could not decode passport: %v", err)
			c.Next()
			return
		}

		if sub, ok := claims["sub"].(string); ok && sub != "" {
			c.Set("passport_subject", sub)
			logger.InfoWithContextf(ctx, "[Passport] request carries passport for subject %s", sub)
		}

		c.Next()
	}
}
