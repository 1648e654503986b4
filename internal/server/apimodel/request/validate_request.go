package request

import "github.com/macho715/HVDC-PJT-sub001/common/model"

// ValidateDistributionRequest 提交分布校验请求
// Expected 的 key 为 vendor 名或 "combined"，value 按 Flow Code 下标排列
type ValidateDistributionRequest struct {
	Expected map[string][]int       `json:"expected" binding:"required"`
	Actual   map[string]map[int]int `json:"actual"`
	Batches  []BatchInput           `json:"batches"`
}

// BatchInput 待分类的行数据（无 Actual 计数时先分类再校验）
type BatchInput struct {
	BatchID string                   `json:"batch_id"`
	Vendor  string                   `json:"vendor" binding:"required"`
	Rows    []map[string]interface{} `json:"rows" binding:"required,min=1"`
}

// ToBusinessData 转换为队列业务数据
func (r *ValidateDistributionRequest) ToBusinessData() *model.DistributionValidateBusinessData {
	data := &model.DistributionValidateBusinessData{
		Expected: r.Expected,
		Actual:   r.Actual,
	}
	for _, b := range r.Batches {
		data.Batches = append(data.Batches, model.FlowClassifyBusinessData{
			BatchID: b.BatchID,
			Vendor:  b.Vendor,
			Rows:    b.Rows,
		})
	}
	return data
}
