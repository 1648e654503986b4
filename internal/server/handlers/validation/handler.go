package validation

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/macho715/HVDC-PJT-sub001/internal/business"
	"github.com/macho715/HVDC-PJT-sub001/internal/server/apimodel/request"
	"github.com/macho715/HVDC-PJT-sub001/internal/server/apimodel/response"
	"github.com/macho715/HVDC-PJT-sub001/pkg/ginx"
)

// ValidationHandler 分布校验 HTTP 处理器
type ValidationHandler struct {
	submissionService *business.SubmissionService
}

// NewValidationHandler 创建分布校验处理器实例
func NewValidationHandler(submissionService *business.SubmissionService) *ValidationHandler {
	return &ValidationHandler{
		submissionService: submissionService,
	}
}

// Create 提交分布校验接口（异步，报告经回调落日志）
// POST /api/v1/validations
func (h *ValidationHandler) Create(c *gin.Context) {
	var req request.ValidateDistributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	if len(req.Actual) == 0 && len(req.Batches) == 0 {
		ginx.BadRequest(c, "either actual counts or batches required")
		return
	}

	requestID, err := h.submissionService.SubmitValidation(c.Request.Context(), req.ToBusinessData())
	if err != nil {
		log.Printf("[ERROR] submit validation failed: %v", err)
		ginx.InternalError(c, err.Error())
		return
	}

	ginx.Success(c, response.SubmittedResponse{RequestID: requestID})
}
