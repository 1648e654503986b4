package engine

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseTouch 触碰判定：全函数、永不报错
func TestParseTouch(t *testing.T) {
	tests := []struct {
		name string
		in   Value
		want TouchKind
	}{
		{"空值", NullValue(), TouchEmpty},
		{"空串", TextValue(""), TouchEmpty},
		{"纯空白", TextValue("   "), TouchEmpty},
		{"NaN 残留", TextValue("NaN"), TouchEmpty},
		{"NaT 残留", TextValue("NaT"), TouchEmpty},
		{"none 残留", TextValue("None"), TouchEmpty},
		{"数值 NaN", NumberValue(math.NaN()), TouchEmpty},
		{"日期", TextValue("2024-01-10"), TouchDate},
		{"日期时间", TextValue("2024-01-10 08:30:00"), TouchDate},
		{"斜杠日期", TextValue("2024/01/10"), TouchDate},
		{"紧凑日期", TextValue("20240110"), TouchDate},
		{"数值", NumberValue(3), TouchNumeric},
		{"数字文本", TextValue("42"), TouchNumeric},
		{"小数文本", TextValue("1.5"), TouchNumeric},
		{"已解析时间", TimeValue(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)), TouchDate},
		{"不可解析非空文本", TextValue("pending confirmation"), TouchUnparsed},
		{"符号混杂文本", TextValue("TBD?"), TouchUnparsed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTouch(tt.in)
			assert.Equal(t, tt.want, got.Kind)
			assert.Equal(t, tt.want != TouchEmpty, got.Touched())
		})
	}
}

// TestParseTouch_Timestamp 日期触碰必须携带可用时间戳
func TestParseTouch_Timestamp(t *testing.T) {
	got := ParseTouch(TextValue("2024-01-10"))
	require.Equal(t, TouchDate, got.Kind)
	assert.True(t, got.HasTime())
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), got.Time)

	// 非空但不可解析：已触碰、时间未知
	unparsed := ParseTouch(TextValue("at site, no doc"))
	assert.True(t, unparsed.Touched())
	assert.False(t, unparsed.HasTime())
}

// TestCanonicalWarehouse 仓名规范化：仅后缀不同的列归并为同一物理仓库
func TestCanonicalWarehouse(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"DSV Indoor", "dsv indoor"},
		{"DSV Indoor_return", "dsv indoor"},
		{"DSV Indoor_return_2", "dsv indoor"},
		{"DSV Indoor_2", "dsv indoor"},
		{"DSV Outdoor", "dsv outdoor"},
		{"DSV Al Markaz", "dsv al markaz"},
		{"AAA  Storage", "aaa  storage"},
		{"MOSB", "mosb"},
		{"SHU 2", "shu"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CanonicalWarehouse(tt.in), "input=%q", tt.in)
	}
}

// TestExtractor_Extract 列缺失跳过、触碰归集
func TestExtractor_Extract(t *testing.T) {
	cfg := DefaultRuleConfig()
	ex := NewExtractor(cfg)

	row := Row{
		"DSV Indoor": TextValue("2024-01-10"),
		"AGI":        TextValue("2024-01-20"),
		"MOSB":       TextValue(""),
		"DSV MZP":    NullValue(),
		// DSV Outdoor 等列缺失：直接跳过，不报错
	}

	touches := ex.Extract(row)

	assert.Len(t, touches.Warehouses, 1)
	assert.Contains(t, touches.Warehouses, "DSV Indoor")
	assert.Len(t, touches.Sites, 1)
	assert.Contains(t, touches.Sites, "AGI")
	assert.False(t, touches.HasOffshoreBase())
	assert.Equal(t, 1, touches.DistinctWarehouseCount())
}

// TestTouches_Dedup 去重不变量：DSV Indoor 与 DSV Indoor_return 同时触碰计 1 不计 2
func TestTouches_Dedup(t *testing.T) {
	cfg := DefaultRuleConfig()
	cfg.WarehouseColumns = append(cfg.WarehouseColumns, "DSV Indoor_return")
	ex := NewExtractor(cfg)

	row := Row{
		"DSV Indoor":        TextValue("2024-01-10"),
		"DSV Indoor_return": TextValue("2024-02-01"),
	}

	touches := ex.Extract(row)
	require.Len(t, touches.Warehouses, 2)
	assert.Equal(t, 1, touches.DistinctWarehouseCount())
}

// TestTouches_DifferentWarehousesSameDay 不同仓库同日触碰仍计 2
func TestTouches_DifferentWarehousesSameDay(t *testing.T) {
	ex := NewExtractor(DefaultRuleConfig())

	row := Row{
		"DSV Indoor":  TextValue("2024-01-10"),
		"DSV Outdoor": TextValue("2024-01-10"),
	}

	touches := ex.Extract(row)
	assert.Equal(t, 2, touches.DistinctWarehouseCount())
}
