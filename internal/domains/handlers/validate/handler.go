package validate

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
)

// ValidateHandler 分布校验 Handler
type ValidateHandler struct {
	ctx      context.Context
	meta     *job.Meta
	bizData  *model.DistributionValidateBusinessData
	services *business.Services
}

// NewValidateHandler 创建分布校验 Handler
func NewValidateHandler(ctx context.Context, meta *job.Meta, payload interface{}) (common.HandlerServ, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload failed: %w", err)
	}

	var bizData model.DistributionValidateBusinessData
	if err := json.Unmarshal(payloadBytes, &bizData); err != nil {
		return nil, fmt.Errorf("unmarshal business data failed: %w", err)
	}

	if len(bizData.Expected) == 0 {
		return nil, fmt.Errorf("expected distribution is required")
	}

	return &ValidateHandler{
		ctx:     ctx,
		meta:    meta,
		bizData: &bizData,
	}, nil
}

// GetProcess 处理分布校验请求
func (h *ValidateHandler) GetProcess() *response.Response {
	result := response.NewClassifyResult()

	err := h.process()

	resp := &response.Response{}
	resp.WrapResponse(result, h.meta, err)

	return resp
}

// process 业务处理逻辑（前置函数链：依赖解析 → 执行）
func (h *ValidateHandler) process() error {
	pre := framework.NewPreProcessor([]framework.ProcessorFunc{
		h.resolveServices,
		h.validate,
	})
	return pre.Run(h.ctx)
}

func (h *ValidateHandler) resolveServices(ctx context.Context) error {
	services := business.FromContext(ctx)
	if services == nil || services.Validation == nil {
		return fmt.Errorf("ValidationService not found in context")
	}
	h.services = services
	return nil
}

func (h *ValidateHandler) validate(ctx context.Context) error {
	input := &business.ValidateInput{
		RequestID: h.meta.RequestID,
		ID:        h.meta.ID,
		Data:      h.bizData,
	}

	return h.services.Validation.ExecuteValidation(ctx, input)
}
