package engine

// Flow Code 常量（路由形态桶）
const (
	// FlowCodePreArrival 0：尚未到达任何位置（或尚无现场触碰，不可执行）
	FlowCodePreArrival = 0
	// FlowCodeDirect 1：直达现场
	FlowCodeDirect = 1
	// FlowCodeSingleHop 2：单跳（一仓中转，或仅经海上基地）
	FlowCodeSingleHop = 2
	// FlowCodeMultiHop 3：多跳
	FlowCodeMultiHop = 3
	// FlowCodeExtended 4：扩展多跳（>2 仓 + 海上基地，仅 5 桶模式）
	FlowCodeExtended = 4
)

// Classifier Flow Code 分类器
// 决策顺序即判定顺序，先命中先返回；顺序承载语义，不可调整
type Classifier struct {
	cfg *RuleConfig
}

// NewClassifier 创建分类器
func NewClassifier(cfg *RuleConfig) *Classifier {
	return &Classifier{cfg: cfg}
}

// Classify 根据触碰信息判定 Flow Code
func (c *Classifier) Classify(t *Touches) int {
	site := t.HasSite()
	mosb := t.HasOffshoreBase()
	wh := t.DistinctWarehouseCount()

	return c.classify(wh, mosb, site)
}

// ClassifyFromCount 根据外部给定的触碰计数判定 Flow Code
// count 为 nil 表示计数缺失：除非独立满足 Pre-Arrival 谓词，否则回落到配置的
// NaNFlowDefault（改进路径默认 1，而非朴素实现的 0——这是有意的修正）
func (c *Classifier) ClassifyFromCount(count *int, hasOffshoreBase, hasSite bool) int {
	if count == nil {
		if !hasOffshoreBase && !hasSite {
			return FlowCodePreArrival
		}
		return c.cfg.NaNFlowDefault
	}
	wh := *count
	if wh < 0 {
		wh = 0
	}
	return c.classify(wh, hasOffshoreBase, hasSite)
}

// classify 判定阶梯
func (c *Classifier) classify(wh int, mosb, site bool) int {
	// 1. Pre-Arrival：无任何触碰
	if !site && !mosb && wh == 0 {
		return FlowCodePreArrival
	}

	// 2. 有仓库/MOSB 触碰但无现场触碰：仍为 Code 0
	// 货不可能"运往虚无"——没有现场触碰的记录尚未进入可执行状态。
	// 这是调用方必须保留的既定特例，不是疏漏。
	if !site {
		return FlowCodePreArrival
	}

	// 3. 直达：有现场、零仓库、无 MOSB
	if wh == 0 && !mosb {
		return FlowCodeDirect
	}

	// 4. 单跳：恰一仓且无 MOSB，或零仓且有 MOSB
	if (wh == 1 && !mosb) || (wh == 0 && mosb) {
		return FlowCodeSingleHop
	}

	// 5. 扩展多跳（仅 5 桶模式）：>2 仓且有 MOSB，须先于多跳判定
	if c.cfg.BucketMode == BucketModeFive && mosb && wh > 2 {
		return FlowCodeExtended
	}

	// 6. 多跳：有 MOSB 且 ≥1 仓，或无 MOSB 且 ≥2 仓
	return FlowCodeMultiHop
}

// TrueSingleHop 审计谓词："严格单跳"
// 要求恰一个去重仓库、恰一个去重现场、无 MOSB 触碰；
// 满足者是 Code 2 的严格子集，用于发现 Code 2 被多仓/多现场记录虚增的情况
func (c *Classifier) TrueSingleHop(t *Touches) bool {
	return t.DistinctWarehouseCount() == 1 &&
		t.DistinctSiteCount() == 1 &&
		!t.HasOffshoreBase()
}

// MaxBucket 当前桶模式下的最大 Flow Code
func (c *Classifier) MaxBucket() int {
	if c.cfg.BucketMode == BucketModeFive {
		return FlowCodeExtended
	}
	return FlowCodeMultiHop
}
