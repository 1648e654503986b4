package entity

import (
	"time"

	"gorm.io/datatypes"
)

// Batch 货件批次实体（包含分类结果）
type Batch struct {
	// 基础字段
	ID     string `gorm:"column:id;primaryKey;type:varchar(64)"`
	Vendor string `gorm:"column:vendor;type:varchar(32);not null;index:idx_vendor_status"`

	// 批次数据
	RawData datatypes.JSON `gorm:"column:rows;type:json;not null"`

	// 分类状态与结果
	Status       string         `gorm:"column:status;type:varchar(16);not null;default:'CLASSIFYING';index:idx_vendor_status"`
	FlowResult   datatypes.JSON `gorm:"column:flow_result;type:json"`
	RecordCount  int            `gorm:"column:record_count;not null;default:0"`
	ErrorMessage string         `gorm:"column:error_message;type:varchar(512)"`

	// 时间戳
	CreatedAt time.Time `gorm:"column:created_at;not null;index:idx_created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName 指定表名
func (Batch) TableName() string {
	return "flow_batches"
}

// 批次状态常量
const (
	BatchStatusClassifying = "CLASSIFYING"
	BatchStatusClassified  = "CLASSIFIED"
	BatchStatusFailed      = "FAILED"
)
