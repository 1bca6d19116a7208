package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"aerium/internal/domain"
)

const requesterKey = "requester"

// requestLogger структурный access-log с request id
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()
		c.Set("requestId", requestID)
		start := time.Now()
		c.Next()
		log.WithFields(log.Fields{
			"requestId": requestID,
			"method":    c.Request.Method,
			"url":       c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"duration":  time.Since(start).String(),
			"clientIp":  c.ClientIP(),
		}).Info("request")
	}
}

// authMiddleware извлекает вызывающего из bearer-токена
func (s *Server) authMiddleware(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	req, err := s.auth.ParseToken(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	c.Set(requesterKey, req)
	c.Next()
}

// elevatedMiddleware пускает только ADMIN/OWNER
func (s *Server) elevatedMiddleware(c *gin.Context) {
	if !requester(c).Role.Elevated() {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "operator role required"})
		return
	}
	c.Next()
}

func requester(c *gin.Context) domain.Requester {
	v, _ := c.Get(requesterKey)
	r, _ := v.(domain.Requester)
	return r
}
