package reconcile

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

// ReconcileHandler 库存对账 Handler
type ReconcileHandler struct {
	ctx      context.Context
	meta     *job.Meta
	bizData  *model.InventoryReconcileBusinessData
	services *business.Services
}

// NewReconcileHandler 创建库存对账 Handler
func NewReconcileHandler(ctx context.Context, meta *job.Meta, payload interface{}) (common.HandlerServ, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload failed: %w", err)
	}

	var bizData model.InventoryReconcileBusinessData
	if err := json.Unmarshal(payloadBytes, &bizData); err != nil {
		return nil, fmt.Errorf("unmarshal business data failed: %w", err)
	}

	if len(bizData.Claimed) == 0 && len(bizData.Reported) == 0 {
		return nil, fmt.Errorf("claimed or reported inventory is required")
	}

	return &ReconcileHandler{
		ctx:     ctx,
		meta:    meta,
		bizData: &bizData,
	}, nil
}

// GetProcess 处理库存对账请求
func (h *ReconcileHandler) GetProcess() *response.Response {
	result := response.NewClassifyResult()

	err := h.process()

	resp := &response.Response{}
	resp.WrapResponse(result, h.meta, err)

	return resp
}

// process 业务处理逻辑（前置函数链：依赖解析 → 执行）
func (h *ReconcileHandler) process() error {
	pre := framework.NewPreProcessor([]framework.ProcessorFunc{
		h.resolveServices,
		h.reconcile,
	})
	return pre.Run(h.ctx)
}

func (h *ReconcileHandler) resolveServices(ctx context.Context) error {
	services := business.FromContext(ctx)
	if services == nil || services.Reconciliation == nil {
		return fmt.Errorf("ReconciliationService not found in context")
	}
	h.services = services
	return nil
}

func (h *ReconcileHandler) reconcile(ctx context.Context) error {
	input := &business.ReconcileInput{
		RequestID: h.meta.RequestID,
		ID:        h.meta.ID,
		Data:      h.bizData,
	}

	return h.services.Reconciliation.ExecuteReconciliation(ctx, input)
}
