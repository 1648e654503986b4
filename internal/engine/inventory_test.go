package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macho715/HVDC-PJT-sub001/common/model"
)

func invRow(itemID string, qty string, location string) model.InventoryRow {
	return model.InventoryRow{
		ItemID:   itemID,
		Quantity: decimal.RequireFromString(qty),
		Location: location,
	}
}

func mv(itemID, location, date string) model.Movement {
	d, _ := time.Parse("2006-01-02", date)
	return model.Movement{ItemID: itemID, Location: location, Date: d}
}

// TestValidateQuantityConsistency 总量一致率
func TestValidateQuantityConsistency(t *testing.T) {
	c := NewInventoryChecker()

	claimed := []model.InventoryRow{invRow("A", "100", "DSV Indoor"), invRow("B", "50.5", "DSV Outdoor")}
	reported := []model.InventoryRow{invRow("A", "100", "DSV Indoor"), invRow("B", "50.5", "DSV Outdoor")}

	// 完全一致 ⇒ 1.0
	assert.Equal(t, 1.0, c.ValidateQuantityConsistency(claimed, reported))

	// 两表皆空 ⇒ 定义为 1.0 而非除零
	assert.Equal(t, 1.0, c.ValidateQuantityConsistency(nil, nil))

	// 对称性：交换两表输入结果不变
	reported = []model.InventoryRow{invRow("A", "90", "DSV Indoor")}
	r1 := c.ValidateQuantityConsistency(claimed, reported)
	r2 := c.ValidateQuantityConsistency(reported, claimed)
	assert.Equal(t, r1, r2)
	assert.InDelta(t, 1.0-60.5/150.5, r1, 1e-9)
}

// TestDetectQuantityMismatch 逐项精确比对与严重度阈值
func TestDetectQuantityMismatch(t *testing.T) {
	c := NewInventoryChecker()

	claimed := []model.InventoryRow{
		invRow("A", "100", "DSV Indoor"),
		invRow("B", "50", "DSV Outdoor"),
		invRow("C", "30", "DSV MZP"),
	}
	reported := []model.InventoryRow{
		invRow("A", "85", "DSV Indoor"),  // Δ15 > 10 ⇒ HIGH
		invRow("B", "47", "DSV Outdoor"), // Δ3 ⇒ MEDIUM
		invRow("C", "30", "DSV MZP"),     // 一致，不报
	}

	anomalies := c.DetectQuantityMismatch(claimed, reported)
	require.Len(t, anomalies, 2)
	assert.Equal(t, model.AnomalyKindQuantityMismatch, anomalies[0].Kind)
	assert.Equal(t, "A", anomalies[0].CaseID)
	assert.Equal(t, model.AnomalySeverityHigh, anomalies[0].Severity)
	assert.Equal(t, "B", anomalies[1].CaseID)
	assert.Equal(t, model.AnomalySeverityMedium, anomalies[1].Severity)
}

// TestDetectQuantityMismatch_MultiLocation 同一物项跨位置按汇总量比对
func TestDetectQuantityMismatch_MultiLocation(t *testing.T) {
	c := NewInventoryChecker()

	claimed := []model.InventoryRow{
		invRow("A", "60", "DSV Indoor"),
		invRow("A", "40", "DSV Outdoor"),
	}
	reported := []model.InventoryRow{invRow("A", "100", "DSV Al Markaz")}

	assert.Empty(t, c.DetectQuantityMismatch(claimed, reported))
}

// TestDetectPhantomInventory 幽灵库存恒为 HIGH
func TestDetectPhantomInventory(t *testing.T) {
	c := NewInventoryChecker()

	claimed := []model.InventoryRow{invRow("A", "10", "DSV Indoor"), invRow("GHOST", "5", "")}
	reported := []model.InventoryRow{invRow("A", "10", "DSV Indoor")}

	anomalies := c.DetectPhantomInventory(claimed, reported)
	require.Len(t, anomalies, 1)
	assert.Equal(t, model.AnomalyKindPhantomInventory, anomalies[0].Kind)
	assert.Equal(t, "GHOST", anomalies[0].CaseID)
	assert.Equal(t, model.AnomalySeverityHigh, anomalies[0].Severity)
}

// TestValidateLocationExistence 位置词表校验：空位置与未知位置均报 MEDIUM
func TestValidateLocationExistence(t *testing.T) {
	c := NewInventoryChecker()
	vocab := []string{"DSV Indoor", "DSV Outdoor", "MOSB", "AGI"}

	rows := []model.InventoryRow{
		invRow("A", "10", "DSV Indoor"),
		invRow("B", "10", "Warehouse X"),
		invRow("C", "10", ""),
	}

	anomalies := c.ValidateLocationExistence(rows, vocab)
	require.Len(t, anomalies, 2)
	assert.Equal(t, "B", anomalies[0].CaseID)
	assert.Equal(t, model.AnomalyKindMissingLocation, anomalies[0].Kind)
	assert.Equal(t, "C", anomalies[1].CaseID)
}

// TestDetectDuplicateEntry 同物项同位置重复行只报一次
func TestDetectDuplicateEntry(t *testing.T) {
	c := NewInventoryChecker()

	rows := []model.InventoryRow{
		invRow("A", "10", "DSV Indoor"),
		invRow("A", "10", "DSV Indoor"),
		invRow("A", "10", "DSV Indoor"),
		invRow("A", "10", "DSV Outdoor"), // 不同位置不算重复
		invRow("B", "5", "DSV Indoor"),   // 不同物项不算重复
	}

	anomalies := c.DetectDuplicateEntry(rows)
	require.Len(t, anomalies, 1)
	assert.Equal(t, model.AnomalyKindDuplicateEntry, anomalies[0].Kind)
	assert.Equal(t, "A", anomalies[0].CaseID)
}

// TestValidateMovementTimeline 时间线三类异常（固定时钟）
func TestValidateMovementTimeline(t *testing.T) {
	fixed, _ := time.Parse("2006-01-02", "2024-06-01")
	c := NewInventoryCheckerAt(func() time.Time { return fixed })

	// 正常推进：无异常
	ok := []model.Movement{
		mv("A", "DSV Indoor", "2024-01-10"),
		mv("A", "MOSB", "2024-01-15"),
		mv("A", "AGI", "2024-01-20"),
	}
	assert.Empty(t, c.ValidateMovementTimeline(ok))

	// 未来日期 ⇒ HIGH
	future := []model.Movement{mv("A", "DSV Indoor", "2024-07-01")}
	anomalies := c.ValidateMovementTimeline(future)
	require.Len(t, anomalies, 1)
	assert.Equal(t, model.AnomalySeverityHigh, anomalies[0].Severity)

	// 日期回退 ⇒ HIGH
	regression := []model.Movement{
		mv("A", "DSV Indoor", "2024-01-15"),
		mv("A", "MOSB", "2024-01-10"),
	}
	anomalies = c.ValidateMovementTimeline(regression)
	require.NotEmpty(t, anomalies)
	assert.Equal(t, model.AnomalyKindInvalidTimeline, anomalies[0].Kind)
	assert.Equal(t, model.AnomalySeverityHigh, anomalies[0].Severity)

	// 合法重访（离开后再回来）不报异常
	revisit := []model.Movement{
		mv("A", "DSV Indoor", "2024-01-10"),
		mv("A", "MOSB", "2024-01-15"),
		mv("A", "DSV Indoor", "2024-01-20"),
	}
	assert.Empty(t, c.ValidateMovementTimeline(revisit))
}

// TestDetectInvalidTimeline 多物项分组后各自独立校验
func TestDetectInvalidTimeline(t *testing.T) {
	fixed, _ := time.Parse("2006-01-02", "2024-06-01")
	c := NewInventoryCheckerAt(func() time.Time { return fixed })

	movements := []model.Movement{
		mv("A", "DSV Indoor", "2024-01-10"),
		mv("B", "DSV Outdoor", "2024-01-20"),
		mv("A", "AGI", "2024-01-15"),
		mv("B", "AGI", "2024-01-05"), // B 回退
	}

	anomalies := c.DetectInvalidTimeline(movements)
	require.Len(t, anomalies, 1)
	assert.Equal(t, "B", anomalies[0].CaseID)
}

// TestReconcile 完整对账汇总
func TestReconcile(t *testing.T) {
	fixed, _ := time.Parse("2006-01-02", "2024-06-01")
	c := NewInventoryCheckerAt(func() time.Time { return fixed })

	data := &model.InventoryReconcileBusinessData{
		Claimed: []model.InventoryRow{
			invRow("A", "100", "DSV Indoor"),
			invRow("GHOST", "5", "Warehouse X"),
		},
		Reported: []model.InventoryRow{invRow("A", "80", "DSV Indoor")},
		Locations: []string{
			"DSV Indoor", "DSV Outdoor", "DSV Al Markaz", "DSV MZP", "MOSB",
			"AGI", "DAS", "MIR", "SHU",
		},
		Movements: []model.Movement{
			mv("A", "DSV Indoor", "2024-01-10"),
			mv("A", "AGI", "2024-01-20"),
		},
	}

	result := c.Reconcile(data)
	assert.Equal(t, "105", result.ClaimedTotal)
	assert.Equal(t, "80", result.ReportedTotal)
	assert.InDelta(t, 1.0-25.0/105.0, result.ConsistencyRate, 1e-9)

	// 数量不一致(A) + 幽灵库存(GHOST) + 未知位置(GHOST 行)
	kinds := make(map[string]int)
	for _, a := range result.Anomalies {
		kinds[a.Kind]++
	}
	assert.Equal(t, 1, kinds[model.AnomalyKindQuantityMismatch])
	assert.Equal(t, 1, kinds[model.AnomalyKindPhantomInventory])
	assert.Equal(t, 1, kinds[model.AnomalyKindMissingLocation])
	assert.Equal(t, 0, kinds[model.AnomalyKindInvalidTimeline])

	// 完全一致的两表：一致率 1.0 且零异常
	clean := &model.InventoryReconcileBusinessData{
		Claimed:  []model.InventoryRow{invRow("A", "10", "DSV Indoor")},
		Reported: []model.InventoryRow{invRow("A", "10", "DSV Indoor")},
	}
	cleanResult := c.Reconcile(clean)
	assert.Equal(t, 1.0, cleanResult.ConsistencyRate)
	assert.Empty(t, cleanResult.Anomalies)
}
