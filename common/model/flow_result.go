package model

import "time"

// FlowRecordResult 单条货件记录的分类结果
// 输出契约：报表写入方按此结构消费
type FlowRecordResult struct {
	CaseID                 string     `json:"case_id"`
	Vendor                 string     `json:"vendor"`
	WarehouseTouchCount    int        `json:"warehouse_touch_count"` // WH_HANDLING，不含 MOSB
	FlowCode               int        `json:"flow_code"`             // 0-4
	FinalLocation          string     `json:"final_location"`        // 永不为空，兜底 "Unknown"
	FinalLocationTimestamp *time.Time `json:"final_location_timestamp,omitempty"`
	TrueSingleHop          bool       `json:"true_single_hop"` // 审计谓词：严格单跳
}

// FlowBatchResult 批量分类结果
type FlowBatchResult struct {
	BatchID      string             `json:"batch_id"`
	Vendor       string             `json:"vendor"`
	RecordCount  int                `json:"record_count"`
	BucketCounts map[int]int        `json:"bucket_counts"` // Flow Code → 条数
	Records      []FlowRecordResult `json:"records"`
}

// FinalLocationUnknown 最终位置兜底值
const FinalLocationUnknown = "Unknown"
