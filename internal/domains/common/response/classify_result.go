package response

import (
	"github.com/macho715/HVDC-PJT-sub001/internal/domains/common/job"
	"github.com/macho715/HVDC-PJT-sub001/pkg/errorutil"
)

// ClassifyResult 批次处理结果（实现 ResultI 接口）
// flow_classify / distribution_validate / inventory_reconcile 共用
type ClassifyResult struct {
	ID     string           `json:"id"` // 批次 ID
	Status string           `json:"status"`
	Data   interface{}      `json:"data"`
	Error  *errorutil.Error `json:"error,omitempty"`
}

const (
	ClassifyStatusSuccess = "SUCCESS"
	ClassifyStatusFailed  = "FAILED"
)

// NewClassifyResult 创建批次处理结果
func NewClassifyResult() *ClassifyResult {
	return &ClassifyResult{}
}

// Set 实现 ResultI 接口
func (r *ClassifyResult) Set(meta *job.Meta, err error) {
	r.ID = meta.ID
	if err != nil {
		r.Status = ClassifyStatusFailed
		r.Error = errorutil.Wrap(err)
	} else {
		r.Status = ClassifyStatusSuccess
	}
}

// GetStatus 实现 ResultI 接口
func (r *ClassifyResult) GetStatus() string {
	return r.Status
}
