package model

// FlowBatchCallback 批量分类完成回调消息
// 用于 worker → callback_consumer 的消息传递
type FlowBatchCallback struct {
	RequestID   string            `json:"request_id"`
	BatchID     string            `json:"batch_id"`
	Vendor      string            `json:"vendor"`
	Status      string            `json:"status"` // SUCCESS/FAILED
	Error       string            `json:"error,omitempty"`
	Result      *FlowBatchResult      `json:"result,omitempty"`
	Report      *ValidationReport     `json:"report,omitempty"`         // 分布校验报告（可选）
	Reconciliation *ReconciliationResult `json:"reconciliation,omitempty"` // 库存对账结果（可选）
	ProcessedAt int64             `json:"processed_at"`
}

// 回调状态常量
const (
	CallbackStatusSuccess = "SUCCESS"
	CallbackStatusFailed  = "FAILED"
)
