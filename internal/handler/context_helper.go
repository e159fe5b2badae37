package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// ActorHeader names the caller for audit columns. Authentication happens upstream.
const ActorHeader = "X-Actor-ID"

func actorFromContext(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader(ActorHeader))
}
