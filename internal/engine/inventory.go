package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/macho715/HVDC-PJT-sub001/common/model"
)

// 数量严重度阈值：单项差异超过 10 判为 HIGH
var quantityHighThreshold = decimal.NewFromInt(10)

// InventoryChecker 库存一致性检查器
// 对账两张独立来源的库存表；所有检测器均为纯函数，不修改输入
type InventoryChecker struct {
	now func() time.Time // 时钟注入口（时间线检测用）
}

// NewInventoryChecker 创建库存一致性检查器
func NewInventoryChecker() *InventoryChecker {
	return &InventoryChecker{now: time.Now}
}

// NewInventoryCheckerAt 创建固定时钟的检查器（测试用）
func NewInventoryCheckerAt(now func() time.Time) *InventoryChecker {
	return &InventoryChecker{now: now}
}

// ValidateQuantityConsistency 总量一致率
// consistencyRate = 1 - |Δtotal| / total；两表总量均为 0 时定义为 1.0。
// 分母取两表总量中较大者，保证交换两表输入结果不变
func (c *InventoryChecker) ValidateQuantityConsistency(claimed, reported []model.InventoryRow) float64 {
	claimedTotal := sumQuantities(claimed)
	reportedTotal := sumQuantities(reported)

	denom := claimedTotal
	if reportedTotal.GreaterThan(denom) {
		denom = reportedTotal
	}
	if denom.IsZero() {
		return 1.0
	}

	delta := claimedTotal.Sub(reportedTotal).Abs()
	rate, _ := decimal.NewFromInt(1).Sub(delta.Div(denom)).Float64()
	return rate
}

// DetectQuantityMismatch 逐项数量不一致检测
// 项级要求精确相等（批级容差在此不适用）；|Δ| > 10 判 HIGH，否则 MEDIUM
func (c *InventoryChecker) DetectQuantityMismatch(claimed, reported []model.InventoryRow) []model.Anomaly {
	claimedByItem := sumByItem(claimed)
	reportedByItem := sumByItem(reported)

	anomalies := make([]model.Anomaly, 0)
	for _, itemID := range sortedItemIDs(claimedByItem) {
		qtyA := claimedByItem[itemID]
		qtyB, ok := reportedByItem[itemID]
		if !ok {
			// 对方表缺项由 DetectPhantomInventory 负责
			continue
		}
		diff := qtyA.Sub(qtyB).Abs()
		if diff.IsZero() {
			continue
		}

		severity := model.AnomalySeverityMedium
		if diff.GreaterThan(quantityHighThreshold) {
			severity = model.AnomalySeverityHigh
		}

		anomalies = append(anomalies, model.Anomaly{
			Kind:     model.AnomalyKindQuantityMismatch,
			CaseID:   itemID,
			Severity: severity,
			Detail:   fmt.Sprintf("claimed=%s reported=%s diff=%s", qtyA, qtyB, diff),
		})
	}

	return anomalies
}

// DetectPhantomInventory 幽灵库存：声称表有、上报表无的物项
func (c *InventoryChecker) DetectPhantomInventory(claimed, reported []model.InventoryRow) []model.Anomaly {
	reportedByItem := sumByItem(reported)
	claimedByItem := sumByItem(claimed)

	anomalies := make([]model.Anomaly, 0)
	for _, itemID := range sortedItemIDs(claimedByItem) {
		if _, ok := reportedByItem[itemID]; ok {
			continue
		}
		anomalies = append(anomalies, model.Anomaly{
			Kind:     model.AnomalyKindPhantomInventory,
			CaseID:   itemID,
			Severity: model.AnomalySeverityHigh,
			Detail:   fmt.Sprintf("claimed quantity %s has no corresponding location record", claimedByItem[itemID]),
		})
	}

	return anomalies
}

// ValidateLocationExistence 位置合法性：声称位置必须出现在权威位置词表中
func (c *InventoryChecker) ValidateLocationExistence(rows []model.InventoryRow, vocabulary []string) []model.Anomaly {
	known := make(map[string]bool, len(vocabulary))
	for _, loc := range vocabulary {
		known[loc] = true
	}

	anomalies := make([]model.Anomaly, 0)
	for _, row := range rows {
		if row.Location == "" || !known[row.Location] {
			anomalies = append(anomalies, model.Anomaly{
				Kind:     model.AnomalyKindMissingLocation,
				CaseID:   row.ItemID,
				Severity: model.AnomalySeverityMedium,
				Detail:   fmt.Sprintf("location %q not in authoritative vocabulary", row.Location),
			})
		}
	}

	return anomalies
}

// DetectMissingLocationData ValidateLocationExistence 的别名入口（旧调用方命名）
func (c *InventoryChecker) DetectMissingLocationData(rows []model.InventoryRow, vocabulary []string) []model.Anomaly {
	return c.ValidateLocationExistence(rows, vocabulary)
}

// DetectDuplicateEntry 同一物项在同一位置出现多行
func (c *InventoryChecker) DetectDuplicateEntry(rows []model.InventoryRow) []model.Anomaly {
	seen := make(map[string]int)
	anomalies := make([]model.Anomaly, 0)

	for _, row := range rows {
		key := row.ItemID + "\x00" + row.Location
		seen[key]++
		if seen[key] == 2 {
			anomalies = append(anomalies, model.Anomaly{
				Kind:     model.AnomalyKindDuplicateEntry,
				CaseID:   row.ItemID,
				Severity: model.AnomalySeverityMedium,
				Detail:   fmt.Sprintf("duplicate entry for location %q", row.Location),
			})
		}
	}

	return anomalies
}

// ValidateMovementTimeline 单物项移动时间线校验
// 入参为按记录顺序给出的 (location, date) 序列；检出：
// 未来日期（晚于处理时刻）、日期回退、以及乱序重访已离开的仓库
func (c *InventoryChecker) ValidateMovementTimeline(movements []model.Movement) []model.Anomaly {
	anomalies := make([]model.Anomaly, 0)
	now := c.now()

	var prev *model.Movement
	departed := make(map[string]time.Time) // 已离开位置 → 离开时刻

	for i := range movements {
		m := movements[i]

		if m.Date.After(now) {
			anomalies = append(anomalies, model.Anomaly{
				Kind:     model.AnomalyKindInvalidTimeline,
				CaseID:   m.ItemID,
				Severity: model.AnomalySeverityHigh,
				Detail:   fmt.Sprintf("movement to %q dated %s is in the future", m.Location, m.Date.Format("2006-01-02")),
			})
		}

		if prev != nil {
			if m.Date.Before(prev.Date) {
				anomalies = append(anomalies, model.Anomaly{
					Kind:     model.AnomalyKindInvalidTimeline,
					CaseID:   m.ItemID,
					Severity: model.AnomalySeverityHigh,
					Detail: fmt.Sprintf("movement to %q dated %s precedes previous movement dated %s",
						m.Location, m.Date.Format("2006-01-02"), prev.Date.Format("2006-01-02")),
				})
			}

			if prev.Location != m.Location {
				departed[prev.Location] = prev.Date
			}

			// 重访已离开的仓库：仅当重访时间早于当初离开时间才算乱序
			if departedAt, ok := departed[m.Location]; ok && m.Date.Before(departedAt) {
				anomalies = append(anomalies, model.Anomaly{
					Kind:     model.AnomalyKindInvalidTimeline,
					CaseID:   m.ItemID,
					Severity: model.AnomalySeverityMedium,
					Detail: fmt.Sprintf("revisit of %q dated %s predates its departure %s",
						m.Location, m.Date.Format("2006-01-02"), departedAt.Format("2006-01-02")),
				})
			}
		}

		prev = &movements[i]
	}

	return anomalies
}

// DetectInvalidTimeline 多物项时间线校验入口
// movements 按物项分组后各自独立校验；返回全部异常
func (c *InventoryChecker) DetectInvalidTimeline(movements []model.Movement) []model.Anomaly {
	byItem := make(map[string][]model.Movement)
	order := make([]string, 0)
	for _, m := range movements {
		if _, ok := byItem[m.ItemID]; !ok {
			order = append(order, m.ItemID)
		}
		byItem[m.ItemID] = append(byItem[m.ItemID], m)
	}

	anomalies := make([]model.Anomaly, 0)
	for _, itemID := range order {
		anomalies = append(anomalies, c.ValidateMovementTimeline(byItem[itemID])...)
	}
	return anomalies
}

// Reconcile 完整对账：总量一致率 + 全部检测器汇总
func (c *InventoryChecker) Reconcile(data *model.InventoryReconcileBusinessData) *model.ReconciliationResult {
	result := &model.ReconciliationResult{
		ConsistencyRate: c.ValidateQuantityConsistency(data.Claimed, data.Reported),
		ClaimedTotal:    sumQuantities(data.Claimed).String(),
		ReportedTotal:   sumQuantities(data.Reported).String(),
		Anomalies:       make([]model.Anomaly, 0),
	}

	result.Anomalies = append(result.Anomalies, c.DetectQuantityMismatch(data.Claimed, data.Reported)...)
	result.Anomalies = append(result.Anomalies, c.DetectPhantomInventory(data.Claimed, data.Reported)...)
	if len(data.Locations) > 0 {
		result.Anomalies = append(result.Anomalies, c.ValidateLocationExistence(data.Claimed, data.Locations)...)
	}
	result.Anomalies = append(result.Anomalies, c.DetectDuplicateEntry(data.Claimed)...)
	if len(data.Movements) > 0 {
		result.Anomalies = append(result.Anomalies, c.DetectInvalidTimeline(data.Movements)...)
	}

	return result
}

// sumQuantities 全表数量合计
func sumQuantities(rows []model.InventoryRow) decimal.Decimal {
	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.Quantity)
	}
	return total
}

// sumByItem 按物项汇总数量（同一物项可能分布于多个位置）
func sumByItem(rows []model.InventoryRow) map[string]decimal.Decimal {
	byItem := make(map[string]decimal.Decimal)
	for _, row := range rows {
		byItem[row.ItemID] = byItem[row.ItemID].Add(row.Quantity)
	}
	return byItem
}

// sortedItemIDs map 键排序（保证输出确定性）
func sortedItemIDs(m map[string]decimal.Decimal) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
