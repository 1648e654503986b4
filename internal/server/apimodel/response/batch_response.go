package response

import (
	"encoding/json"
	"time"

	"github.com/macho715/HVDC-PJT-sub001/common/entity"
	"github.com/macho715/HVDC-PJT-sub001/common/model"
)

// BatchResponse 批次响应（DTO）
type BatchResponse struct {
	ID           string                 `json:"id"`
	Vendor       string                 `json:"vendor"`
	Status       string                 `json:"status"`
	RecordCount  int                    `json:"record_count"`
	FlowResult   *model.FlowBatchResult `json:"flow_result,omitempty"`
	ErrorMessage string                 `json:"error_message,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// BatchListResponse 批次列表响应（DTO）
type BatchListResponse struct {
	Batches []BatchSummary `json:"batches"`
	Limit   int            `json:"limit"`
	Offset  int            `json:"offset"`
}

// BatchSummary 列表项（不含完整分类结果）
type BatchSummary struct {
	ID          string    `json:"id"`
	Vendor      string    `json:"vendor"`
	Status      string    `json:"status"`
	RecordCount int       `json:"record_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// SubmittedResponse 异步受理响应（校验/对账）
type SubmittedResponse struct {
	RequestID string `json:"request_id"`
}

// FromBatchEntity 实体转响应 DTO
func FromBatchEntity(batch *entity.Batch) *BatchResponse {
	resp := &BatchResponse{
		ID:           batch.ID,
		Vendor:       batch.Vendor,
		Status:       batch.Status,
		RecordCount:  batch.RecordCount,
		ErrorMessage: batch.ErrorMessage,
		CreatedAt:    batch.CreatedAt,
		UpdatedAt:    batch.UpdatedAt,
	}

	if len(batch.FlowResult) > 0 {
		var result model.FlowBatchResult
		if err := json.Unmarshal(batch.FlowResult, &result); err == nil {
			resp.FlowResult = &result
		}
	}

	return resp
}

// FromBatchEntities 实体切片转列表 DTO
func FromBatchEntities(batches []entity.Batch, limit, offset int) *BatchListResponse {
	resp := &BatchListResponse{
		Batches: make([]BatchSummary, 0, len(batches)),
		Limit:   limit,
		Offset:  offset,
	}
	for _, b := range batches {
		resp.Batches = append(resp.Batches, BatchSummary{
			ID:          b.ID,
			Vendor:      b.Vendor,
			Status:      b.Status,
			RecordCount: b.RecordCount,
			CreatedAt:   b.CreatedAt,
		})
	}
	return resp
}
