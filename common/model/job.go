package model

// FlowClassifyJob 批量分类任务消息（标准化）
// 用于 apiserver → worker 的消息传递
type FlowClassifyJob struct {
	Payload FlowClassifyPayload `json:"payload"`
}

// FlowClassifyPayload Job 负载
type FlowClassifyPayload struct {
	Data FlowClassifyData `json:"data"`
}

// FlowClassifyData Job 数据层
type FlowClassifyData struct {
	// 元信息
	RequestID  string `json:"request_id"`  // 请求 ID（全链路追踪）
	OrgID      string `json:"org_id"`      // 组织 ID（MVP 固定为 "0"）
	ActionType string `json:"action_type"` // 动作类型，见 ActionType* 常量
	ID         string `json:"id"`          // 批次 ID

	// 业务数据
	Data interface{} `json:"data"` // 按 action_type 解析为具体业务结构
}

// 动作类型常量（路由键）
const (
	ActionTypeFlowClassify       = "flow_classify"
	ActionTypeDistributionValidate = "distribution_validate"
	ActionTypeInventoryReconcile = "inventory_reconcile"
)

// FlowClassifyBusinessData 批量分类业务数据
// 包含 worker 执行分类所需的全部数据（避免查询 DB）
type FlowClassifyBusinessData struct {
	BatchID string                   `json:"batch_id"` // 批次 ID
	Vendor  string                   `json:"vendor"`   // 数据来源系统
	Rows    []map[string]interface{} `json:"rows"`     // 行数据（列名 → 值）
}

// DistributionValidateBusinessData 分布校验业务数据
// Expected 的 key 为 vendor 名或 "combined"，value 按 Flow Code 下标排列
type DistributionValidateBusinessData struct {
	Expected map[string][]int       `json:"expected"`
	Actual   map[string]map[int]int `json:"actual,omitempty"` // 已有计数时直接校验
	Batches  []FlowClassifyBusinessData `json:"batches,omitempty"` // 否则先分类再校验
}

// InventoryReconcileBusinessData 库存对账业务数据
type InventoryReconcileBusinessData struct {
	Claimed   []InventoryRow `json:"claimed"`             // 声称库存表
	Reported  []InventoryRow `json:"reported"`            // 独立上报位置表
	Locations []string       `json:"locations,omitempty"` // 权威位置词表
	Movements []Movement     `json:"movements,omitempty"` // 按时间顺序给出的移动序列
}
