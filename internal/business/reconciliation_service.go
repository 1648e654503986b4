package business

import (
	"context"
	"encoding/json"
	"time"

	"github.com/macho715/HVDC-PJT-sub001/common/model"
	"github.com/macho715/HVDC-PJT-sub001/internal/engine"
	"github.com/macho715/HVDC-PJT-sub001/pkg/errorutil"
	"github.com/macho715/HVDC-PJT-sub001/pkg/lmstfy"
	"github.com/macho715/HVDC-PJT-sub001/pkg/logger"
)

// ReconciliationService 库存对账服务
// 对账两张独立来源的库存表并发送结果回调
type ReconciliationService struct {
	checker       *engine.InventoryChecker
	lmstfyClient  *lmstfy.Client
	callbackQueue string
	logger        logger.Logger
}

// NewReconciliationService 创建库存对账服务
func NewReconciliationService(checker *engine.InventoryChecker, lmstfyClient *lmstfy.Client, callbackQueue string, log logger.Logger) *ReconciliationService {
	return &ReconciliationService{
		checker:       checker,
		lmstfyClient:  lmstfyClient,
		callbackQueue: callbackQueue,
		logger:        log,
	}
}

// ReconcileInput 库存对账输入
type ReconcileInput struct {
	RequestID string
	ID        string
	Data      *model.InventoryReconcileBusinessData
}

// ExecuteReconciliation 执行对账并发送回调
// 检出异常不是处理失败：回调状态仍为 SUCCESS，异常清单在结果里
func (s *ReconciliationService) ExecuteReconciliation(ctx context.Context, input *ReconcileInput) error {
	result := s.checker.Reconcile(input.Data)

	s.logger.Infof(ctx, "[ReconciliationService] Reconciliation done: id=%s, rate=%.4f, anomalies=%d",
		input.ID, result.ConsistencyRate, len(result.Anomalies))

	callback := model.FlowBatchCallback{
		RequestID:      input.RequestID,
		BatchID:        input.ID,
		Status:         model.CallbackStatusSuccess,
		Reconciliation: result,
		ProcessedAt:    time.Now().Unix(),
	}

	callbackJSON, err := json.Marshal(callback)
	if err != nil {
		return errorutil.NonRetriableWithDetails("marshal reconciliation callback failed", err.Error())
	}
	if err := s.lmstfyClient.Publish(s.callbackQueue, callbackJSON, 0, 0); err != nil {
		return errorutil.RetriableWithDetails("publish reconciliation callback failed", err.Error())
	}

	return nil
}
