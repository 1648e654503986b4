package mysql

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/macho715/HVDC-PJT-sub001/common/entity"
	"github.com/macho715/HVDC-PJT-sub001/common/model"
)

// BatchDAO 批次数据访问对象
type BatchDAO struct {
	db *gorm.DB
}

// NewBatchDAO 创建 BatchDAO 实例
func NewBatchDAO(dsn string) (*BatchDAO, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &BatchDAO{
		db: db,
	}, nil
}

// CreateBatch 创建批次记录（初始状态 CLASSIFYING）
func (dao *BatchDAO) CreateBatch(ctx context.Context, batchID, vendor string, rows []map[string]interface{}) error {
	rowsJSON, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("failed to marshal batch rows: %w", err)
	}

	batch := &entity.Batch{
		ID:          batchID,
		Vendor:      vendor,
		RawData:     rowsJSON,
		Status:      entity.BatchStatusClassifying,
		RecordCount: len(rows),
	}

	if err := dao.db.WithContext(ctx).Create(batch).Error; err != nil {
		return fmt.Errorf("failed to create batch: %w", err)
	}

	return nil
}

// GetBatchByID 根据批次 ID 获取批次
func (dao *BatchDAO) GetBatchByID(ctx context.Context, batchID string) (*entity.Batch, error) {
	var batch entity.Batch
	err := dao.db.WithContext(ctx).
		Where("id = ?", batchID).
		First(&batch).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get batch: %w", err)
	}

	return &batch, nil
}

// UpdateFlowResult 更新批次的分类结果与状态
// result 为 nil 时只更新状态（失败路径）
func (dao *BatchDAO) UpdateFlowResult(
	ctx context.Context,
	batchID string,
	result *model.FlowBatchResult,
	status string,
	errorMsg string,
) error {
	updates := map[string]interface{}{
		"status": status,
	}

	if result != nil {
		resultJSON, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("failed to marshal flow result: %w", err)
		}
		updates["flow_result"] = resultJSON
		updates["record_count"] = result.RecordCount
	}

	if errorMsg != "" {
		updates["error_message"] = errorMsg
	}

	dbResult := dao.db.WithContext(ctx).
		Model(&entity.Batch{}).
		Where("id = ?", batchID).
		Updates(updates)

	if dbResult.Error != nil {
		return fmt.Errorf("failed to update batch: %w", dbResult.Error)
	}

	if dbResult.RowsAffected == 0 {
		return fmt.Errorf("batch not found: %s", batchID)
	}

	return nil
}

// ListBatchesByVendor 按 vendor 和状态分页查询批次
func (dao *BatchDAO) ListBatchesByVendor(ctx context.Context, vendor, status string, limit, offset int) ([]entity.Batch, error) {
	query := dao.db.WithContext(ctx).Model(&entity.Batch{})
	if vendor != "" {
		query = query.Where("vendor = ?", vendor)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var batches []entity.Batch
	err := query.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&batches).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list batches: %w", err)
	}

	return batches, nil
}
