package batch

import (
	"log"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/macho715/HVDC-PJT-sub001/internal/server/apimodel/response"
	"github.com/macho715/HVDC-PJT-sub001/pkg/ginx"
)

// List 批次列表接口
// GET /api/v1/batches?vendor=HITACHI&status=CLASSIFIED&limit=20&offset=0
func (h *BatchHandler) List(c *gin.Context) {
	vendor := c.Query("vendor")
	status := c.Query("status")

	limit := 20
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}
	offset := 0
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o > 0 {
			offset = o
		}
	}

	batches, err := h.submissionService.ListBatches(c.Request.Context(), vendor, status, limit, offset)
	if err != nil {
		log.Printf("[ERROR] list batches failed: %v", err)
		ginx.InternalError(c, err.Error())
		return
	}

	ginx.Success(c, response.FromBatchEntities(batches, limit, offset))
}
