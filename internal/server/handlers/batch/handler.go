package batch

import "github.com/macho715/HVDC-PJT-sub001/internal/business"

// BatchHandler 批次 HTTP 处理器
type BatchHandler struct {
	submissionService *business.SubmissionService
}

// NewBatchHandler 创建批次处理器实例
func NewBatchHandler(submissionService *business.SubmissionService) *BatchHandler {
	return &BatchHandler{
		submissionService: submissionService,
	}
}
