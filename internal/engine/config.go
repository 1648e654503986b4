package engine

import (
	"fmt"

	"github.com/macho715/HVDC-PJT-sub001/pkg/config"
)

// BucketMode Flow Code 目标桶数
type BucketMode string

const (
	// BucketModeFour 4 桶模式（0-3，Code 4 折叠进 Code 3）
	BucketModeFour BucketMode = "four"
	// BucketModeFive 5 桶模式（0-4）
	BucketModeFive BucketMode = "five"
)

// ChainHop 仓库优先级链单跳（起点仓 → 终点仓）
type ChainHop struct {
	Origin      string
	Destination string
}

// Tolerance 分布校验容差
type Tolerance struct {
	Floor        int         // 绝对下限（条数）
	Relative     float64     // 相对容差（比例）
	BucketFloors map[int]int // 按桶覆盖的下限（重点桶收紧用）
}

// RuleConfig 引擎规则配置
// 一次构建后全程只读：所有组件共享同一实例并发安全
type RuleConfig struct {
	WarehouseColumns   []string
	SiteColumns        []string
	OffshoreBaseColumn string
	CaseIDColumn       string
	MetadataColumns    []string

	PriorityChain     []ChainHop
	WarehousePriority []string
	SitePriority      []string

	BucketMode     BucketMode
	NaNFlowDefault int // 触碰计数缺失时的默认 Flow Code（0 或 1）

	Tolerance        Tolerance
	BatchConcurrency int
}

// DefaultRuleConfig 内置默认规则（HVDC 物流列词表）
func DefaultRuleConfig() *RuleConfig {
	return &RuleConfig{
		WarehouseColumns: []string{
			"DSV Indoor", "DSV Outdoor", "DSV Al Markaz", "DSV MZP",
			"Hauler Indoor", "AAA  Storage",
		},
		SiteColumns:        []string{"AGI", "DAS", "MIR", "SHU"},
		OffshoreBaseColumn: "MOSB",
		CaseIDColumn:       "Case No.",
		MetadataColumns:    []string{"Case No.", "Pkg", "VENDOR", "no."},
		PriorityChain: []ChainHop{
			{Origin: "DSV Indoor", Destination: "DSV Al Markaz"},
			{Origin: "DSV Outdoor", Destination: "DSV Al Markaz"},
			{Origin: "DSV MZP", Destination: "DSV Al Markaz"},
		},
		WarehousePriority: []string{
			"DSV Al Markaz", "DSV Indoor", "DSV Outdoor", "DSV MZP",
			"Hauler Indoor", "AAA  Storage",
		},
		SitePriority:   []string{"AGI", "DAS", "MIR", "SHU"},
		BucketMode:     BucketModeFive,
		NaNFlowDefault: 1,
		Tolerance: Tolerance{
			Floor:        50,
			Relative:     0.05,
			BucketFloors: map[int]int{2: 25},
		},
		BatchConcurrency: 4,
	}
}

// FromConfig 从应用配置构建规则配置
// 未填写的字段回落到内置默认值；构建后立即执行 Validate
func FromConfig(ec config.EngineConfig) (*RuleConfig, error) {
	rc := DefaultRuleConfig()

	if len(ec.WarehouseColumns) > 0 {
		rc.WarehouseColumns = ec.WarehouseColumns
	}
	if len(ec.SiteColumns) > 0 {
		rc.SiteColumns = ec.SiteColumns
	}
	if ec.OffshoreBaseColumn != "" {
		rc.OffshoreBaseColumn = ec.OffshoreBaseColumn
	}
	if len(ec.MetadataColumns) > 0 {
		rc.MetadataColumns = ec.MetadataColumns
	}
	if len(ec.PriorityChain) > 0 {
		chain := make([]ChainHop, 0, len(ec.PriorityChain))
		for _, hop := range ec.PriorityChain {
			chain = append(chain, ChainHop{Origin: hop.Origin, Destination: hop.Destination})
		}
		rc.PriorityChain = chain
	}
	if len(ec.WarehousePriority) > 0 {
		rc.WarehousePriority = ec.WarehousePriority
	}
	if len(ec.SitePriority) > 0 {
		rc.SitePriority = ec.SitePriority
	}
	if ec.BucketMode != "" {
		rc.BucketMode = BucketMode(ec.BucketMode)
	}
	// 指针区分"未填写"与显式的 legacy 0
	if ec.NaNFlowDefault != nil {
		rc.NaNFlowDefault = *ec.NaNFlowDefault
	}
	if ec.Tolerance.Floor > 0 {
		rc.Tolerance.Floor = ec.Tolerance.Floor
	}
	if ec.Tolerance.Relative > 0 {
		rc.Tolerance.Relative = ec.Tolerance.Relative
	}
	if len(ec.Tolerance.BucketFloors) > 0 {
		floors := make(map[int]int, len(ec.Tolerance.BucketFloors))
		for k, v := range ec.Tolerance.BucketFloors {
			var bucket int
			if _, err := fmt.Sscanf(k, "%d", &bucket); err != nil {
				return nil, fmt.Errorf("invalid bucket floor key %q: %w", k, err)
			}
			floors[bucket] = v
		}
		rc.Tolerance.BucketFloors = floors
	}
	if ec.BatchConcurrency > 0 {
		rc.BatchConcurrency = ec.BatchConcurrency
	}

	if err := rc.Validate(); err != nil {
		return nil, err
	}

	return rc, nil
}

// Validate 验证规则配置
// 配置级错误是整个引擎唯一的致命错误类别：在任何记录被处理之前失败
func (c *RuleConfig) Validate() error {
	if len(c.WarehouseColumns) == 0 {
		return fmt.Errorf("engine config: warehouse_columns is required")
	}
	if len(c.SiteColumns) == 0 {
		return fmt.Errorf("engine config: site_columns is required")
	}
	if c.OffshoreBaseColumn == "" {
		return fmt.Errorf("engine config: offshore_base_column is required")
	}
	if c.BucketMode != BucketModeFour && c.BucketMode != BucketModeFive {
		return fmt.Errorf("engine config: bucket_mode must be %q or %q, got %q",
			BucketModeFour, BucketModeFive, c.BucketMode)
	}
	if c.NaNFlowDefault != 0 && c.NaNFlowDefault != 1 {
		return fmt.Errorf("engine config: nan_flow_default must be 0 or 1, got %d", c.NaNFlowDefault)
	}
	if c.Tolerance.Relative < 0 {
		return fmt.Errorf("engine config: tolerance.relative must be >= 0")
	}
	if c.Tolerance.Floor < 0 {
		return fmt.Errorf("engine config: tolerance.floor must be >= 0")
	}

	known := make(map[string]bool, len(c.WarehouseColumns))
	for _, w := range c.WarehouseColumns {
		known[w] = true
	}

	// 优先级链引用未知仓库 → 致命
	for _, hop := range c.PriorityChain {
		if !known[hop.Origin] {
			return fmt.Errorf("engine config: priority_chain references unknown warehouse %q", hop.Origin)
		}
		if !known[hop.Destination] {
			return fmt.Errorf("engine config: priority_chain references unknown warehouse %q", hop.Destination)
		}
	}

	// 静态仓库优先级列表同理
	for _, w := range c.WarehousePriority {
		if !known[w] {
			return fmt.Errorf("engine config: warehouse_priority references unknown warehouse %q", w)
		}
	}

	knownSites := make(map[string]bool, len(c.SiteColumns))
	for _, s := range c.SiteColumns {
		knownSites[s] = true
	}
	for _, s := range c.SitePriority {
		if !knownSites[s] {
			return fmt.Errorf("engine config: site_priority references unknown site %q", s)
		}
	}

	return nil
}

// IsMetadata 判断列是否为元数据列（最终位置兜底扫描时跳过）
func (c *RuleConfig) IsMetadata(col string) bool {
	for _, m := range c.MetadataColumns {
		if m == col {
			return true
		}
	}
	return false
}
