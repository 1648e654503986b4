package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryRow 库存表单行（itemId, quantity, location）
// 声称表（claimed）与上报表（reported）共用此结构，可能来自不同上游系统
type InventoryRow struct {
	ItemID   string          `json:"item_id"`
	Quantity decimal.Decimal `json:"quantity"`
	Location string          `json:"location"`
}

// Movement 单个物项的一次移动（location, date）
type Movement struct {
	ItemID   string    `json:"item_id"`
	Location string    `json:"location"`
	Date     time.Time `json:"date"`
}
