package reconciliation

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/macho715/HVDC-PJT-sub001/internal/business"
	"github.com/macho715/HVDC-PJT-sub001/internal/server/apimodel/request"
	"github.com/macho715/HVDC-PJT-sub001/internal/server/apimodel/response"
	"github.com/macho715/HVDC-PJT-sub001/pkg/ginx"
)

// ReconciliationHandler 库存对账 HTTP 处理器
type ReconciliationHandler struct {
	submissionService *business.SubmissionService
}

// NewReconciliationHandler 创建库存对账处理器实例
func NewReconciliationHandler(submissionService *business.SubmissionService) *ReconciliationHandler {
	return &ReconciliationHandler{
		submissionService: submissionService,
	}
}

// Create 提交库存对账接口（异步，结果经回调落日志）
// POST /api/v1/reconciliations
func (h *ReconciliationHandler) Create(c *gin.Context) {
	var req request.ReconcileInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	data, err := req.ToBusinessData()
	if err != nil {
		ginx.BadRequest(c, err.Error())
		return
	}

	requestID, err := h.submissionService.SubmitReconciliation(c.Request.Context(), data)
	if err != nil {
		log.Printf("[ERROR] submit reconciliation failed: %v", err)
		ginx.InternalError(c, err.Error())
		return
	}

	ginx.Success(c, response.SubmittedResponse{RequestID: requestID})
}
