package request

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/macho715/HVDC-PJT-sub001/common/model"
)

// ReconcileInventoryRequest 提交库存对账请求
// Claimed 与 Reported 为两张独立来源的库存表
type ReconcileInventoryRequest struct {
	Claimed   []InventoryRowInput `json:"claimed" binding:"required"`
	Reported  []InventoryRowInput `json:"reported" binding:"required"`
	Locations []string            `json:"locations"`
	Movements []MovementInput     `json:"movements"`
}

// InventoryRowInput 库存行（数量为 decimal 字符串，避免浮点误差）
type InventoryRowInput struct {
	ItemID   string `json:"item_id" binding:"required"`
	Quantity string `json:"quantity" binding:"required" example:"10.5"`
	Location string `json:"location"`
}

// MovementInput 物项移动记录
type MovementInput struct {
	ItemID   string    `json:"item_id" binding:"required"`
	Location string    `json:"location" binding:"required"`
	Date     time.Time `json:"date" binding:"required"`
}

// ToBusinessData 转换为队列业务数据，数量字符串在此解析
func (r *ReconcileInventoryRequest) ToBusinessData() (*model.InventoryReconcileBusinessData, error) {
	claimed, err := toInventoryRows(r.Claimed)
	if err != nil {
		return nil, fmt.Errorf("claimed: %w", err)
	}
	reported, err := toInventoryRows(r.Reported)
	if err != nil {
		return nil, fmt.Errorf("reported: %w", err)
	}

	data := &model.InventoryReconcileBusinessData{
		Claimed:   claimed,
		Reported:  reported,
		Locations: r.Locations,
	}
	for _, m := range r.Movements {
		data.Movements = append(data.Movements, model.Movement{
			ItemID:   m.ItemID,
			Location: m.Location,
			Date:     m.Date,
		})
	}
	return data, nil
}

func toInventoryRows(inputs []InventoryRowInput) ([]model.InventoryRow, error) {
	rows := make([]model.InventoryRow, 0, len(inputs))
	for _, in := range inputs {
		qty, err := decimal.NewFromString(in.Quantity)
		if err != nil {
			return nil, fmt.Errorf("invalid quantity %q for item %s", in.Quantity, in.ItemID)
		}
		rows = append(rows, model.InventoryRow{
			ItemID:   in.ItemID,
			Quantity: qty,
			Location: in.Location,
		})
	}
	return rows, nil
}
