package engine

import (
	"time"
)

// ValueKind 字段值类别
type ValueKind int

const (
	// ValueNull 字段存在但值为空（null/NaN）
	ValueNull ValueKind = iota
	// ValueText 文本值
	ValueText
	// ValueNumber 数值
	ValueNumber
	// ValueTime 已解析的时间值
	ValueTime
)

// Value 类型化字段值
// "字段不存在"由 Row 的 key 缺失表达，与"存在但为空"（ValueNull）严格区分
type Value struct {
	Kind   ValueKind
	Text   string
	Number float64
	Time   time.Time
}

// NullValue 创建空值
func NullValue() Value {
	return Value{Kind: ValueNull}
}

// TextValue 创建文本值
func TextValue(s string) Value {
	return Value{Kind: ValueText, Text: s}
}

// NumberValue 创建数值
func NumberValue(f float64) Value {
	return Value{Kind: ValueNumber, Number: f}
}

// TimeValue 创建时间值
func TimeValue(t time.Time) Value {
	return Value{Kind: ValueTime, Time: t}
}

// Row 单条记录：列名 → 类型化值
// 未识别的列直接忽略，不视为错误
type Row map[string]Value

// Lookup 查找字段，第二个返回值区分"字段不存在"与"存在但为空"
func (r Row) Lookup(col string) (Value, bool) {
	v, ok := r[col]
	return v, ok
}

// RowFromMap 将 JSON 反序列化得到的行转换为类型化 Row
// nil → 空值；数值 → ValueNumber；布尔/字符串 → ValueText；其余类型忽略
func RowFromMap(m map[string]interface{}) Row {
	row := make(Row, len(m))
	for col, raw := range m {
		switch v := raw.(type) {
		case nil:
			row[col] = NullValue()
		case float64:
			row[col] = NumberValue(v)
		case int:
			row[col] = NumberValue(float64(v))
		case int64:
			row[col] = NumberValue(float64(v))
		case bool:
			if v {
				row[col] = TextValue("true")
			} else {
				row[col] = TextValue("false")
			}
		case string:
			row[col] = TextValue(v)
		case time.Time:
			row[col] = TimeValue(v)
		}
	}
	return row
}
