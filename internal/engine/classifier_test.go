package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mkTouches 构造触碰：wh 仓库数、site 现场数、mosb 是否触碰海上基地
func mkTouches(whs []string, sites []string, mosb bool) *Touches {
	t := &Touches{
		Warehouses: make(map[string]TouchValue),
		Sites:      make(map[string]TouchValue),
	}
	for _, w := range whs {
		t.Warehouses[w] = TouchValue{Kind: TouchUnparsed, Raw: "x"}
	}
	for _, s := range sites {
		t.Sites[s] = TouchValue{Kind: TouchUnparsed, Raw: "x"}
	}
	if mosb {
		t.OffshoreBase = TouchValue{Kind: TouchUnparsed, Raw: "x"}
	}
	return t
}

// TestClassifier_Ladder 判定阶梯全覆盖
func TestClassifier_Ladder(t *testing.T) {
	c := NewClassifier(DefaultRuleConfig())

	tests := []struct {
		name  string
		whs   []string
		sites []string
		mosb  bool
		want  int
	}{
		{"纯 Pre-Arrival", nil, nil, false, FlowCodePreArrival},
		{"有仓无现场仍为 0", []string{"DSV Indoor"}, nil, false, FlowCodePreArrival},
		{"有 MOSB 无现场仍为 0", nil, nil, true, FlowCodePreArrival},
		{"仓+MOSB 无现场仍为 0", []string{"DSV Indoor"}, nil, true, FlowCodePreArrival},
		{"直达", nil, []string{"AGI"}, false, FlowCodeDirect},
		{"单跳：一仓", []string{"DSV Indoor"}, []string{"AGI"}, false, FlowCodeSingleHop},
		{"单跳：仅 MOSB", nil, []string{"DAS"}, true, FlowCodeSingleHop},
		{"多跳：两仓", []string{"DSV Indoor", "DSV Outdoor"}, []string{"AGI"}, false, FlowCodeMultiHop},
		{"多跳：一仓+MOSB", []string{"DSV Indoor"}, []string{"MIR"}, true, FlowCodeMultiHop},
		{"多跳：两仓+MOSB", []string{"DSV Indoor", "DSV Outdoor"}, []string{"AGI"}, true, FlowCodeMultiHop},
		{"扩展多跳：三仓+MOSB", []string{"DSV Indoor", "DSV Outdoor", "DSV MZP"}, []string{"AGI"}, true, FlowCodeExtended},
		{"三仓无 MOSB 仍为 3", []string{"DSV Indoor", "DSV Outdoor", "DSV MZP"}, []string{"AGI"}, false, FlowCodeMultiHop},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(mkTouches(tt.whs, tt.sites, tt.mosb))
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestClassifier_FourBucketMode 4 桶模式下 Code 4 折叠进 Code 3
func TestClassifier_FourBucketMode(t *testing.T) {
	cfg := DefaultRuleConfig()
	cfg.BucketMode = BucketModeFour
	c := NewClassifier(cfg)

	touches := mkTouches([]string{"DSV Indoor", "DSV Outdoor", "DSV MZP"}, []string{"AGI"}, true)
	assert.Equal(t, FlowCodeMultiHop, c.Classify(touches))
	assert.Equal(t, FlowCodeMultiHop, c.MaxBucket())

	cfg5 := DefaultRuleConfig()
	assert.Equal(t, FlowCodeExtended, NewClassifier(cfg5).MaxBucket())
}

// TestClassifier_TouchCountInvariant 不变量：flowCode==0 当且仅当 无仓、无 MOSB、无现场
func TestClassifier_TouchCountInvariant(t *testing.T) {
	c := NewClassifier(DefaultRuleConfig())

	for wh := 0; wh <= 4; wh++ {
		for _, mosb := range []bool{false, true} {
			for _, site := range []bool{false, true} {
				whs := []string{"DSV Indoor", "DSV Outdoor", "DSV MZP", "DSV Al Markaz"}[:wh]
				var sites []string
				if site {
					sites = []string{"AGI"}
				}
				code := c.Classify(mkTouches(whs, sites, mosb))

				if !site {
					// 无现场触碰 ⇒ 永远是 Code 0（既定特例）
					assert.Equal(t, FlowCodePreArrival, code,
						"wh=%d mosb=%v site=%v", wh, mosb, site)
				} else {
					assert.NotEqual(t, FlowCodePreArrival, code,
						"wh=%d mosb=%v site=%v", wh, mosb, site)
				}
			}
		}
	}
}

// TestClassifier_Monotonic 单调性：固定现场/MOSB，仓库数增加时 Flow Code 不减
func TestClassifier_Monotonic(t *testing.T) {
	c := NewClassifier(DefaultRuleConfig())
	all := []string{"DSV Indoor", "DSV Outdoor", "DSV MZP", "DSV Al Markaz", "Hauler Indoor"}

	for _, mosb := range []bool{false, true} {
		prev := -1
		for wh := 1; wh <= len(all); wh++ {
			code := c.Classify(mkTouches(all[:wh], []string{"AGI"}, mosb))
			if prev >= 0 {
				assert.GreaterOrEqual(t, code, prev, "wh=%d mosb=%v", wh, mosb)
			}
			prev = code
		}
	}
}

// TestClassifier_ClassifyFromCount 计数缺失的非对称默认
func TestClassifier_ClassifyFromCount(t *testing.T) {
	c := NewClassifier(DefaultRuleConfig())

	// 缺失计数 + 独立满足 Pre-Arrival 谓词 ⇒ 0
	assert.Equal(t, FlowCodePreArrival, c.ClassifyFromCount(nil, false, false))

	// 缺失计数但有现场触碰 ⇒ 默认 1（不是 0，这是有意的修正）
	assert.Equal(t, FlowCodeDirect, c.ClassifyFromCount(nil, false, true))
	assert.Equal(t, FlowCodeDirect, c.ClassifyFromCount(nil, true, true))

	// legacy 路径：配置改为默认 0
	legacy := DefaultRuleConfig()
	legacy.NaNFlowDefault = 0
	cl := NewClassifier(legacy)
	assert.Equal(t, FlowCodePreArrival, cl.ClassifyFromCount(nil, false, true))

	// 正常计数走判定阶梯
	one := 1
	assert.Equal(t, FlowCodeSingleHop, c.ClassifyFromCount(&one, false, true))
	two := 2
	assert.Equal(t, FlowCodeMultiHop, c.ClassifyFromCount(&two, false, true))

	// 负数计数按 0 处理
	neg := -3
	assert.Equal(t, FlowCodeDirect, c.ClassifyFromCount(&neg, false, true))
}

// TestClassifier_TrueSingleHop 审计谓词：严格单跳是 Code 2 的严格子集
func TestClassifier_TrueSingleHop(t *testing.T) {
	c := NewClassifier(DefaultRuleConfig())

	strict := mkTouches([]string{"DSV Indoor"}, []string{"AGI"}, false)
	require.Equal(t, FlowCodeSingleHop, c.Classify(strict))
	assert.True(t, c.TrueSingleHop(strict))

	// 多现场：Code 2 可能成立但严格单跳不成立
	multiSite := mkTouches([]string{"DSV Indoor"}, []string{"AGI", "DAS"}, false)
	require.Equal(t, FlowCodeSingleHop, c.Classify(multiSite))
	assert.False(t, c.TrueSingleHop(multiSite))

	// 仅 MOSB 的 Code 2 不是严格单跳
	mosbOnly := mkTouches(nil, []string{"AGI"}, true)
	require.Equal(t, FlowCodeSingleHop, c.Classify(mosbOnly))
	assert.False(t, c.TrueSingleHop(mosbOnly))
}
