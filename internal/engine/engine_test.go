package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestClassifyRecord_DirectDelivery 直达：仅现场触碰
func TestClassifyRecord_DirectDelivery(t *testing.T) {
	e, err := New(nil)
	require.NoError(t, err)

	row := Row{
		"Case No.": TextValue("HVDC-A-001"),
		"VENDOR":   TextValue("HITACHI"),
		"AGI":      TextValue("2024-01-20"),
	}

	rec := e.ClassifyRecord("HITACHI", row)
	assert.Equal(t, "HVDC-A-001", rec.CaseID)
	assert.Equal(t, FlowCodeDirect, rec.FlowCode)
	assert.Equal(t, 0, rec.WarehouseTouchCount)
	assert.Equal(t, "AGI", rec.FinalLocation)
	require.NotNil(t, rec.FinalLocationTimestamp)
	assert.Equal(t, "2024-01-20", rec.FinalLocationTimestamp.Format("2006-01-02"))
	assert.False(t, rec.TrueSingleHop)
}

// TestClassifyRecord_SingleHop 单跳：一仓中转后抵达现场，现场压制最终位置
func TestClassifyRecord_SingleHop(t *testing.T) {
	e, err := New(nil)
	require.NoError(t, err)

	row := Row{
		"Case No.":   TextValue("HVDC-B-001"),
		"DSV Indoor": TextValue("2024-01-10"),
		"AGI":        TextValue("2024-01-20"),
	}

	rec := e.ClassifyRecord("HITACHI", row)
	assert.Equal(t, 1, rec.WarehouseTouchCount)
	assert.Equal(t, FlowCodeSingleHop, rec.FlowCode)
	assert.Equal(t, "AGI", rec.FinalLocation)
	assert.True(t, rec.TrueSingleHop)
}

// TestClassifyRecord_MultiHop 多跳：两仓 + 现场
func TestClassifyRecord_MultiHop(t *testing.T) {
	e, err := New(nil)
	require.NoError(t, err)

	row := Row{
		"Case No.":    TextValue("HVDC-C-001"),
		"DSV Indoor":  TextValue("2024-01-10"),
		"DSV Outdoor": TextValue("2024-01-12"),
		"DAS":         TextValue("2024-01-25"),
	}

	rec := e.ClassifyRecord("SIM", row)
	assert.Equal(t, 2, rec.WarehouseTouchCount)
	assert.Equal(t, FlowCodeMultiHop, rec.FlowCode)
	assert.Equal(t, "DAS", rec.FinalLocation)
	assert.False(t, rec.TrueSingleHop)
}

// TestClassifyRecord_InWarehouse 未达现场：Code 0 但最终位置走链解析
func TestClassifyRecord_InWarehouse(t *testing.T) {
	e, err := New(nil)
	require.NoError(t, err)

	row := Row{
		"Case No.":      TextValue("HVDC-D-001"),
		"DSV Indoor":    TextValue("2024-01-10"),
		"DSV Al Markaz": TextValue("2024-01-15"),
	}

	rec := e.ClassifyRecord("HITACHI", row)
	// 无现场触碰 ⇒ Code 0，与最终位置解析相互独立
	assert.Equal(t, FlowCodePreArrival, rec.FlowCode)
	assert.Equal(t, 2, rec.WarehouseTouchCount)
	// 链上时间较晚者胜出
	assert.Equal(t, "DSV Al Markaz", rec.FinalLocation)
}

// TestClassifyRecord_ReturnSuffixDedup 再入库后缀列与原列去重计 1
func TestClassifyRecord_ReturnSuffixDedup(t *testing.T) {
	cfg := DefaultRuleConfig()
	cfg.WarehouseColumns = append(cfg.WarehouseColumns, "DSV Indoor_return")
	e, err := New(cfg)
	require.NoError(t, err)

	row := Row{
		"Case No.":          TextValue("HVDC-R-001"),
		"DSV Indoor":        TextValue("2024-01-10"),
		"DSV Indoor_return": TextValue("2024-02-01"),
		"AGI":               TextValue("2024-02-10"),
	}

	rec := e.ClassifyRecord("HITACHI", row)
	assert.Equal(t, 1, rec.WarehouseTouchCount)
	assert.Equal(t, FlowCodeSingleHop, rec.FlowCode)
}

// TestClassifyRecord_Idempotent 幂等：同记录同规则多次分类结果一致
func TestClassifyRecord_Idempotent(t *testing.T) {
	e, err := New(nil)
	require.NoError(t, err)

	row := Row{
		"Case No.":   TextValue("HVDC-I-001"),
		"DSV Indoor": TextValue("2024-01-10"),
		"MOSB":       TextValue("2024-01-12"),
		"MIR":        TextValue("2024-01-20"),
	}

	first := e.ClassifyRecord("HITACHI", row)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, e.ClassifyRecord("HITACHI", row))
	}
	assert.Equal(t, FlowCodeMultiHop, first.FlowCode)
}

// TestClassifyRecord_NeverErrors 坏记录回落默认值，不中断
func TestClassifyRecord_NeverErrors(t *testing.T) {
	e, err := New(nil)
	require.NoError(t, err)

	rows := []Row{
		{},  // 全空记录
		nil, // nil 记录
		{"DSV Indoor": TextValue("not a date !!"), "AGI": TextValue("???")},
		{"Case No.": NullValue(), "MOSB": TextValue("nan")},
	}

	for i, row := range rows {
		rec := e.ClassifyRecord("SIM", row)
		assert.GreaterOrEqual(t, rec.FlowCode, FlowCodePreArrival, "row %d", i)
		assert.NotEmpty(t, rec.FinalLocation, "row %d", i)
	}
}

// TestClassifyBatch 批量分类：计数归并与缺失 CaseID 兜底
func TestClassifyBatch(t *testing.T) {
	e, err := New(nil)
	require.NoError(t, err)

	rows := []Row{
		{"Case No.": TextValue("C-1"), "AGI": TextValue("2024-01-20")},                                       // Code 1
		{"Case No.": TextValue("C-2"), "DSV Indoor": TextValue("2024-01-10"), "AGI": TextValue("2024-01-20")}, // Code 2
		{"DSV Indoor": TextValue("2024-01-10")},                                                              // Code 0，无 CaseID
	}

	result := e.ClassifyBatch(context.Background(), "B-100", "HITACHI", rows)
	assert.Equal(t, 3, result.RecordCount)
	assert.Equal(t, map[int]int{0: 1, 1: 1, 2: 1}, result.BucketCounts)
	// 记录顺序与输入顺序一致
	assert.Equal(t, "C-1", result.Records[0].CaseID)
	// 缺失 CaseID 回落 batchID-下标
	assert.Equal(t, "B-100-2", result.Records[2].CaseID)
}

// TestClassifyBatch_ConcurrencyEquivalence 分片数不影响结果
func TestClassifyBatch_ConcurrencyEquivalence(t *testing.T) {
	rows := make([]Row, 0, 200)
	for i := 0; i < 200; i++ {
		row := Row{"Case No.": TextValue(fmt.Sprintf("C-%03d", i))}
		switch i % 4 {
		case 0:
			row["AGI"] = TextValue("2024-01-20")
		case 1:
			row["DSV Indoor"] = TextValue("2024-01-10")
			row["DAS"] = TextValue("2024-01-20")
		case 2:
			row["DSV Indoor"] = TextValue("2024-01-10")
			row["DSV Outdoor"] = TextValue("2024-01-12")
			row["MIR"] = TextValue("2024-01-20")
		case 3:
			// 无任何触碰
		}
		rows = append(rows, row)
	}

	mkEngine := func(workers int) *Engine {
		cfg := DefaultRuleConfig()
		cfg.BatchConcurrency = workers
		e, err := New(cfg)
		require.NoError(t, err)
		return e
	}

	serial := mkEngine(1).ClassifyBatch(context.Background(), "B-200", "SIM", rows)
	for _, workers := range []int{2, 4, 16, 500} {
		parallel := mkEngine(workers).ClassifyBatch(context.Background(), "B-200", "SIM", rows)
		assert.Equal(t, serial.BucketCounts, parallel.BucketCounts, "workers=%d", workers)
		assert.Equal(t, serial.Records, parallel.Records, "workers=%d", workers)
	}

	assert.Equal(t, map[int]int{0: 50, 1: 50, 2: 50, 3: 50}, serial.BucketCounts)
}

// TestClassifyBatch_Empty 空批次
func TestClassifyBatch_Empty(t *testing.T) {
	e, err := New(nil)
	require.NoError(t, err)

	result := e.ClassifyBatch(context.Background(), "B-0", "SIM", nil)
	assert.Equal(t, 0, result.RecordCount)
	assert.Empty(t, result.BucketCounts)
	assert.Empty(t, result.Records)
}

// TestClassifyRows JSON 行入口
func TestClassifyRows(t *testing.T) {
	e, err := New(nil)
	require.NoError(t, err)

	raw := []map[string]interface{}{
		{"Case No.": "J-1", "AGI": "2024-01-20", "Pkg": float64(3)},
		{"Case No.": "J-2", "DSV Indoor": "2024-01-10", "SHU": "2024-01-22"},
		{"Case No.": "J-3", "DSV Indoor": nil, "AGI": nil},
	}

	result := e.ClassifyRows(context.Background(), "B-300", "HITACHI", raw)
	require.Len(t, result.Records, 3)
	assert.Equal(t, FlowCodeDirect, result.Records[0].FlowCode)
	assert.Equal(t, FlowCodeSingleHop, result.Records[1].FlowCode)
	// null 值不构成触碰
	assert.Equal(t, FlowCodePreArrival, result.Records[2].FlowCode)
}
