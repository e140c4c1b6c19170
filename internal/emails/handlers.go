package emails

import (
	"net/http"
	"strconv"

	"commerce-platform/internal/httpapi"
	"commerce-platform/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Handler exposes the operator view over the delivery pipeline.
type Handler struct {
	rdb *redis.Client
}

func NewHandler(rdb *redis.Client) *Handler { return &Handler{rdb: rdb} }

// DeadLetters handles GET /admin/emails/dead.
func (h *Handler) DeadLetters(c *gin.Context) {
	limit := int64(0)
	if v, err := strconv.ParseInt(c.Query("limit"), 10, 64); err == nil {
		limit = v
	}

	list, err := DeadLetters(c.Request.Context(), h.rdb, limit)
	if err != nil {
		logger.FromGin(c).Error("list dead letters failed", "error", err.Error())
		httpapi.AbortInternal(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deadLetters": list, "total": len(list)})
}
