package engine

import (
	"sort"
	"time"

	"github.com/macho715/HVDC-PJT-sub001/common/model"
)

// Resolver 最终位置解析器
// 与 Flow Code 相互独立：为每条记录恰好选出一个"当前所在位置"
type Resolver struct {
	cfg *RuleConfig
}

// NewResolver 创建最终位置解析器
func NewResolver(cfg *RuleConfig) *Resolver {
	return &Resolver{cfg: cfg}
}

// Resolve 解析最终位置
// 回落顺序承载语义：现场压制（步骤 1）必须先于优先级链（步骤 2）执行——
// 货一旦到达现场，无论时间戳先后，都不再上报"仍在仓库"
func (r *Resolver) Resolve(row Row, t *Touches) (string, *time.Time) {
	// 1. 现场压制：任一现场触碰存在即返回现场
	// 多现场触碰按配置的现场优先级取第一个
	if t.HasSite() {
		for _, site := range r.cfg.SitePriority {
			if tv, ok := t.Sites[site]; ok {
				return site, touchTime(tv)
			}
		}
		// 优先级列表未覆盖的现场列：按列名排序保证确定性
		for _, site := range sortedKeys(t.Sites) {
			return site, touchTime(t.Sites[site])
		}
	}

	// 2. 仓库优先级链：起点与终点都触碰时取时间戳较晚者（持平偏向起点）
	for _, hop := range r.cfg.PriorityChain {
		ov, oTouched := t.Warehouses[hop.Origin]
		dv, dTouched := t.Warehouses[hop.Destination]

		switch {
		case oTouched && dTouched:
			// 无时间戳按零值时间参与比较：双方缺失视作持平 → 起点
			if dv.Time.After(ov.Time) {
				return hop.Destination, touchTime(dv)
			}
			return hop.Origin, touchTime(ov)
		case dTouched:
			return hop.Destination, touchTime(dv)
		case oTouched:
			return hop.Origin, touchTime(ov)
		}
	}

	// 3. 静态仓库优先级列表：取第一个触碰的仓库
	for _, wh := range r.cfg.WarehousePriority {
		if tv, ok := t.Warehouses[wh]; ok {
			return wh, touchTime(tv)
		}
	}

	// 链与优先级列表都未覆盖的仓库列：按列名排序兜底
	for _, wh := range sortedKeys(t.Warehouses) {
		return wh, touchTime(t.Warehouses[wh])
	}

	// 4. 海上基地
	if t.HasOffshoreBase() {
		return r.cfg.OffshoreBaseColumn, touchTime(t.OffshoreBase)
	}

	// 5. 兜底扫描：剩余非空、非元数据字段中第一个有值的列
	cols := make([]string, 0, len(row))
	for col := range row {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	for _, col := range cols {
		if r.cfg.IsMetadata(col) {
			continue
		}
		if r.isLocationColumn(col) {
			// 位置列能走到这里说明未构成触碰，跳过
			continue
		}
		if row[col].Kind != ValueNull {
			return col, nil
		}
	}

	// 6. 全部落空
	return model.FinalLocationUnknown, nil
}

// isLocationColumn 判断列是否为已配置的位置列
func (r *Resolver) isLocationColumn(col string) bool {
	if col == r.cfg.OffshoreBaseColumn {
		return true
	}
	for _, w := range r.cfg.WarehouseColumns {
		if w == col {
			return true
		}
	}
	for _, s := range r.cfg.SiteColumns {
		if s == col {
			return true
		}
	}
	return false
}

// touchTime 提取可用时间戳（无可解析时间时返回 nil）
func touchTime(tv TouchValue) *time.Time {
	if !tv.HasTime() {
		return nil
	}
	t := tv.Time
	return &t
}

// sortedKeys map 键排序（保证迭代确定性）
func sortedKeys(m map[string]TouchValue) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
