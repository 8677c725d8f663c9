package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"homefix/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	authCachePrefix = "auth:"
	authCacheTTL    = 30 * time.Minute
)

// bearerToken pulls the token out of the Authorization header.
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(authHeader, "Bearer "), true
}

// jwtAuth validates a bearer token minted by the external auth service for
// the given role and caches verified token hashes in Redis. On success the
// subject is stored in the context under ctxKey.
func jwtAuth(role, ctxKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := zap.L()
		ctx := context.Background()

		tokenString, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}

		subject, tokenRole, err := utils.ExtractClaimsFromToken(tokenString)
		if err != nil || subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		if tokenRole != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Wrong role for this endpoint"})
			return
		}

		// Check the authorization cache; on a hit refresh the sliding TTL.
		cacheKey := authCachePrefix + utils.HashToken(tokenString)
		authCache := utils.GetAuthCacheClient()
		if cached, err := authCache.Get(ctx, cacheKey).Result(); err == nil && cached == subject {
			if err := authCache.Expire(ctx, cacheKey, authCacheTTL).Err(); err != nil {
				logger.Error("Failed to refresh auth cache TTL", zap.Error(err))
			}
			c.Set(ctxKey, subject)
			c.Next()
			return
		} else if err != nil && err != redis.Nil {
			logger.Error("Error checking auth cache", zap.Error(err))
		}

		if err := authCache.Set(ctx, cacheKey, subject, authCacheTTL).Err(); err != nil {
			logger.Error("Failed to populate auth cache", zap.Error(err))
		}
		c.Set(ctxKey, subject)
		c.Next()
	}
}

// JWTAuthUserMiddleware guards customer endpoints.
func JWTAuthUserMiddleware() gin.HandlerFunc {
	return jwtAuth("user", "userID")
}

// JWTAuthProviderMiddleware guards provider endpoints.
func JWTAuthProviderMiddleware() gin.HandlerFunc {
	return jwtAuth("provider", "providerID")
}
