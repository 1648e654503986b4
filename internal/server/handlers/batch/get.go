package batch

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/macho715/HVDC-PJT-sub001/internal/server/apimodel/response"
	"github.com/macho715/HVDC-PJT-sub001/pkg/ginx"
)

// Get godoc
// @Summary      获取批次详情
// @Description  根据批次ID获取批次详细信息（包含分类结果）
// @Description
// @Description  使用场景：
// @Description  - 提交批次返回 code=3001 时，通过此接口轮询结果
// @Description  - 查询历史批次详情
// @Tags         batches
// @Produce      json
// @Param        id path string true "批次ID"
// @Success      200 {object} ginx.Response{data=response.BatchResponse} "查询成功"
// @Failure      400 {object} ginx.Response "参数错误"
// @Failure      404 {object} ginx.Response "批次不存在"
// @Failure      500 {object} ginx.Response "服务器错误"
// @Router       /batches/{id} [get]
func (h *BatchHandler) Get(c *gin.Context) {
	batchID := c.Param("id")
	if batchID == "" {
		ginx.BadRequest(c, "batch_id required")
		return
	}

	batch, err := h.submissionService.GetBatch(c.Request.Context(), batchID)
	if err != nil {
		log.Printf("[ERROR] get batch failed: %v", err)
		ginx.InternalError(c, err.Error())
		return
	}
	if batch == nil {
		ginx.NotFound(c, "batch not found")
		return
	}

	ginx.Success(c, response.FromBatchEntity(batch))
}
