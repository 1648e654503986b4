package batch

import (
	"fmt"
	"log"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/macho715/HVDC-PJT-sub001/common/entity"
	"github.com/macho715/HVDC-PJT-sub001/internal/server/apimodel/request"
	"github.com/macho715/HVDC-PJT-sub001/internal/server/apimodel/response"
	"github.com/macho715/HVDC-PJT-sub001/pkg/ginx"
)

// Create 提交批量分类接口
// POST /api/v1/batches?wait=10
func (h *BatchHandler) Create(c *gin.Context) {
	waitSeconds := 0
	if waitStr := c.Query("wait"); waitStr != "" {
		if w, err := strconv.Atoi(waitStr); err == nil && w > 0 {
			waitSeconds = w
		}
	}

	var req request.SubmitBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	batch, err := h.submissionService.SubmitBatch(c.Request.Context(), req.Vendor, req.Rows, waitSeconds)
	if err != nil {
		log.Printf("[ERROR] submit batch failed: %v", err)
		ginx.InternalError(c, err.Error())
		return
	}

	if batch.Status == entity.BatchStatusClassifying {
		pollURL := fmt.Sprintf("/api/v1/batches/%s", batch.ID)
		ginx.Processing(c, batch.ID, pollURL)
		return
	}

	ginx.Success(c, response.FromBatchEntity(batch))
}
