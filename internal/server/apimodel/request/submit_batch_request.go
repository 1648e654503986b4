package request

// SubmitBatchRequest 提交批量分类请求
type SubmitBatchRequest struct {
	Vendor string                   `json:"vendor" binding:"required" example:"HITACHI"`
	Rows   []map[string]interface{} `json:"rows" binding:"required,min=1"`
}
