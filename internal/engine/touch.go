package engine

import (
	"strconv"
	"strings"
	"time"
)

// TouchKind 触碰值类别（类型化联合，由 Extractor 统一产出，下游不再重复解析）
type TouchKind int

const (
	// TouchEmpty 未触碰（空串、纯空白、null/NaN）
	TouchEmpty TouchKind = iota
	// TouchNumeric 数值型触碰（无时间戳）
	TouchNumeric
	// TouchDate 含可解析时间戳的触碰
	TouchDate
	// TouchUnparsed 非空但无法解析的触碰（按"已触碰但时间未知"处理，不报错）
	TouchUnparsed
)

// TouchValue 单列触碰值
type TouchValue struct {
	Kind   TouchKind
	Time   time.Time // 仅 TouchDate 有效
	Number float64   // 仅 TouchNumeric 有效
	Raw    string    // 原始文本（调试用）
}

// Touched 是否构成触碰
func (t TouchValue) Touched() bool {
	return t.Kind != TouchEmpty
}

// HasTime 是否带可用时间戳
func (t TouchValue) HasTime() bool {
	return t.Kind == TouchDate
}

// Touches 单条记录的触碰提取结果
type Touches struct {
	Warehouses   map[string]TouchValue // 仅包含已触碰的仓库列
	Sites        map[string]TouchValue // 仅包含已触碰的现场列
	OffshoreBase TouchValue            // 未触碰时 Kind 为 TouchEmpty
}

// HasSite 是否存在现场触碰
func (t *Touches) HasSite() bool {
	return len(t.Sites) > 0
}

// HasOffshoreBase 是否存在海上基地（MOSB）触碰
func (t *Touches) HasOffshoreBase() bool {
	return t.OffshoreBase.Touched()
}

// DistinctWarehouseCount 去重后的仓库触碰数（WH_HANDLING，不含 MOSB）
// 去重按规范化仓名：仅后缀（_return、数字序号）不同的列视为同一物理仓库
func (t *Touches) DistinctWarehouseCount() int {
	seen := make(map[string]bool, len(t.Warehouses))
	for name := range t.Warehouses {
		seen[CanonicalWarehouse(name)] = true
	}
	return len(seen)
}

// DistinctSiteCount 去重后的现场触碰数
func (t *Touches) DistinctSiteCount() int {
	seen := make(map[string]bool, len(t.Sites))
	for name := range t.Sites {
		seen[CanonicalWarehouse(name)] = true
	}
	return len(seen)
}

// CanonicalWarehouse 规范化仓库名
// 去掉再入库/修正标记后缀："X_return"、"X_return_2"、"X_2"、"X (2)" 均归并为 "x"
func CanonicalWarehouse(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	for {
		trimmed := s
		trimmed = strings.TrimSuffix(trimmed, "_return")
		// 去掉尾部数字序号："_2"、" 2"、"(2)"
		if i := strings.LastIndexAny(trimmed, "_ ("); i >= 0 && i < len(trimmed)-1 {
			tail := strings.Trim(trimmed[i+1:], "()")
			if _, err := strconv.Atoi(tail); err == nil {
				trimmed = strings.TrimRight(trimmed[:i], " _")
			}
		}
		trimmed = strings.TrimSpace(trimmed)
		if trimmed == s || trimmed == "" {
			return s
		}
		s = trimmed
	}
}

// 常见日期布局（按命中频率排列）
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006/01/02",
	"02/01/2006",
	"2006-01-02 15:04",
	"20060102",
}

// Extractor 触碰提取器
// 对单条记录判定各位置列是否构成触碰；全函数无副作用、永不报错
type Extractor struct {
	cfg *RuleConfig
}

// NewExtractor 创建触碰提取器
func NewExtractor(cfg *RuleConfig) *Extractor {
	return &Extractor{cfg: cfg}
}

// Extract 提取单条记录的全部触碰
// 配置中的列在记录里缺失时直接跳过（MissingRequiredColumn 非致命）
func (e *Extractor) Extract(row Row) *Touches {
	touches := &Touches{
		Warehouses: make(map[string]TouchValue),
		Sites:      make(map[string]TouchValue),
	}

	for _, col := range e.cfg.WarehouseColumns {
		if v, ok := row.Lookup(col); ok {
			if tv := ParseTouch(v); tv.Touched() {
				touches.Warehouses[col] = tv
			}
		}
	}

	for _, col := range e.cfg.SiteColumns {
		if v, ok := row.Lookup(col); ok {
			if tv := ParseTouch(v); tv.Touched() {
				touches.Sites[col] = tv
			}
		}
	}

	if v, ok := row.Lookup(e.cfg.OffshoreBaseColumn); ok {
		touches.OffshoreBase = ParseTouch(v)
	}

	return touches
}

// ParseTouch 将类型化字段值归一为触碰值（全函数，不抛错）
// 判定规则：时间/数值直接构成触碰；文本去空白后为空或 NaN 残留值不构成触碰，
// 可按日期布局解析的构成带时间戳触碰，纯数字文本构成数值触碰，
// 其余非空文本按"已触碰但时间未知"处理
func ParseTouch(v Value) TouchValue {
	switch v.Kind {
	case ValueNull:
		return TouchValue{Kind: TouchEmpty}

	case ValueTime:
		return TouchValue{Kind: TouchDate, Time: v.Time}

	case ValueNumber:
		// NaN 视为空（pandas 导出残留）
		if v.Number != v.Number {
			return TouchValue{Kind: TouchEmpty}
		}
		return TouchValue{Kind: TouchNumeric, Number: v.Number}

	case ValueText:
		s := strings.TrimSpace(v.Text)
		if s == "" {
			return TouchValue{Kind: TouchEmpty}
		}
		switch strings.ToLower(s) {
		case "nan", "nat", "none", "null":
			// 上游表格导出的空值残留
			return TouchValue{Kind: TouchEmpty}
		}

		if looksDateLike(s) {
			for _, layout := range dateLayouts {
				if t, err := time.Parse(layout, s); err == nil {
					return TouchValue{Kind: TouchDate, Time: t, Raw: s}
				}
			}
		}

		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return TouchValue{Kind: TouchNumeric, Number: f, Raw: s}
		}

		return TouchValue{Kind: TouchUnparsed, Raw: s}
	}

	return TouchValue{Kind: TouchEmpty}
}

// looksDateLike 日期样模式：仅由数字与分隔符（- / : 空格 T Z）构成
func looksDateLike(s string) bool {
	hasDigit := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case r == '-' || r == '/' || r == ':' || r == ' ' || r == 'T' || r == 'Z' || r == '.' || r == '+':
		default:
			return false
		}
	}
	return hasDigit
}
