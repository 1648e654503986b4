package model

// Anomaly 两张独立来源库存表之间的不一致项
type Anomaly struct {
	Kind     string `json:"kind"`     // QUANTITY_MISMATCH/PHANTOM_INVENTORY/MISSING_LOCATION/INVALID_TIMELINE/DUPLICATE_ENTRY
	CaseID   string `json:"case_id"`  // 涉及的 itemId/caseId
	Severity string `json:"severity"` // HIGH/MEDIUM/LOW
	Detail   string `json:"detail"`   // 人类可读描述
}

// 异常类型常量
const (
	AnomalyKindQuantityMismatch = "QUANTITY_MISMATCH"
	AnomalyKindPhantomInventory = "PHANTOM_INVENTORY"
	AnomalyKindMissingLocation  = "MISSING_LOCATION"
	AnomalyKindInvalidTimeline  = "INVALID_TIMELINE"
	AnomalyKindDuplicateEntry   = "DUPLICATE_ENTRY"
)

// 异常级别常量
const (
	AnomalySeverityHigh   = "HIGH"
	AnomalySeverityMedium = "MEDIUM"
	AnomalySeverityLow    = "LOW"
)

// ReconciliationResult 库存对账结果
type ReconciliationResult struct {
	ConsistencyRate float64   `json:"consistency_rate"` // 1 - |Δtotal|/total，total 为 0 时取 1.0
	ClaimedTotal    string    `json:"claimed_total"`    // decimal 字符串
	ReportedTotal   string    `json:"reported_total"`
	Anomalies       []Anomaly `json:"anomalies"`
}
