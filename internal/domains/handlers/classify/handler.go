package classify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/macho715/HVDC-PJT-sub001/common/model"
	"github.com/macho715/HVDC-PJT-sub001/internal/business"
	"github.com/macho715/HVDC-PJT-sub001/internal/domains/common"
	"github.com/macho715/HVDC-PJT-sub001/internal/domains/common/job"
	"github.com/macho715/HVDC-PJT-sub001/internal/domains/common/response"
	"github.com/macho715/HVDC-PJT-sub001/internal/framework"
	"github.com/macho715/HVDC-PJT-sub001/pkg/errorutil"
)

// ClassifyHandler 批量分类 Handler
type ClassifyHandler struct {
	ctx      context.Context
	meta     *job.Meta
	bizData  *model.FlowClassifyBusinessData
	services *business.Services
}

// NewClassifyHandler 创建批量分类 Handler
// 解析标准化 Job 消息并校验必填字段
func NewClassifyHandler(ctx context.Context, meta *job.Meta, payload interface{}) (common.HandlerServ, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload failed: %w", err)
	}

	var bizData model.FlowClassifyBusinessData
	if err := json.Unmarshal(payloadBytes, &bizData); err != nil {
		return nil, fmt.Errorf("unmarshal business data failed: %w", err)
	}

	// 批次 ID 允许只在 meta 里给
	if bizData.BatchID == "" {
		bizData.BatchID = meta.ID
	}
	if bizData.BatchID == "" {
		return nil, fmt.Errorf("batch_id is required")
	}
	if bizData.Vendor == "" {
		return nil, fmt.Errorf("vendor is required")
	}
	if len(bizData.Rows) == 0 {
		return nil, fmt.Errorf("rows is required")
	}

	return &ClassifyHandler{
		ctx:     ctx,
		meta:    meta,
		bizData: &bizData,
	}, nil
}

// GetProcess 处理批量分类请求
func (h *ClassifyHandler) GetProcess() *response.Response {
	result := response.NewClassifyResult()

	err := h.process()

	// 不可重试失败走 Bury 不再重投，需发失败回调让批次落 FAILED，
	// 否则批次会悬挂在 CLASSIFYING
	if err != nil && h.services != nil {
		if e := errorutil.Wrap(err); !e.Retryable {
			input := &business.ClassifyInput{
				RequestID: h.meta.RequestID,
				BatchID:   h.bizData.BatchID,
				Vendor:    h.bizData.Vendor,
			}
			_ = h.services.Classification.ReportFailure(h.ctx, input, err)
		}
	}

	resp := &response.Response{}
	resp.WrapResponse(result, h.meta, err)

	return resp
}

// process 业务处理逻辑（前置函数链：依赖解析 → 执行）
func (h *ClassifyHandler) process() error {
	pre := framework.NewPreProcessor([]framework.ProcessorFunc{
		h.resolveServices,
		h.classify,
	})
	return pre.Run(h.ctx)
}

func (h *ClassifyHandler) resolveServices(ctx context.Context) error {
	services := business.FromContext(ctx)
	if services == nil || services.Classification == nil {
		return fmt.Errorf("ClassificationService not found in context")
	}
	h.services = services
	return nil
}

func (h *ClassifyHandler) classify(ctx context.Context) error {
	input := &business.ClassifyInput{
		RequestID: h.meta.RequestID,
		BatchID:   h.bizData.BatchID,
		Vendor:    h.bizData.Vendor,
		Rows:      h.bizData.Rows,
	}

	return h.services.Classification.ExecuteClassification(ctx, input)
}
