package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macho715/HVDC-PJT-sub001/common/model"
)

// TestToleranceFor 容差计算：max(下限, 期望×相对容差)，重点桶下限可单独收紧
func TestToleranceFor(t *testing.T) {
	v := NewDistributionValidator(DefaultRuleConfig())

	// 小桶走绝对下限 50
	assert.Equal(t, 50, v.ToleranceFor(1, 100))
	// 大桶走相对容差 5%
	assert.Equal(t, 142, v.ToleranceFor(1, 2845))
	// 桶 2 下限被收紧为 25
	assert.Equal(t, 25, v.ToleranceFor(2, 100))
	// 收紧的下限仍被更大的相对容差覆盖
	assert.Equal(t, 176, v.ToleranceFor(2, 3517))
	// 期望为 0 时只剩下限
	assert.Equal(t, 50, v.ToleranceFor(3, 0))
}

// TestValidate_BoundaryEquality 边界语义：|差值| == 容差 判为通过
func TestValidate_BoundaryEquality(t *testing.T) {
	v := NewDistributionValidator(DefaultRuleConfig())

	expected := BucketCounts{1: 1000}
	report := v.Validate("SIM", expected, BucketCounts{1: 1050})
	require.Len(t, report.Buckets, 1)
	assert.Equal(t, 50, report.Buckets[0].Tolerance)
	assert.True(t, report.Buckets[0].WithinTolerance)
	assert.True(t, report.OverallPass)

	// 严格超出 1 条即失败
	report = v.Validate("SIM", expected, BucketCounts{1: 1051})
	assert.False(t, report.Buckets[0].WithinTolerance)
	assert.False(t, report.OverallPass)
}

// TestValidate_BucketFloorOverride 桶 2 收紧下限生效
func TestValidate_BucketFloorOverride(t *testing.T) {
	v := NewDistributionValidator(DefaultRuleConfig())

	expected := BucketCounts{2: 100}
	report := v.Validate("SIM", expected, BucketCounts{2: 125})
	assert.True(t, report.OverallPass)

	report = v.Validate("SIM", expected, BucketCounts{2: 126})
	assert.False(t, report.OverallPass)
}

// TestValidate_FullDistribution 全量分布对比（HVDC 规模量级）
func TestValidate_FullDistribution(t *testing.T) {
	v := NewDistributionValidator(DefaultRuleConfig())

	expected := BucketCounts{1: 2845, 2: 3517, 3: 1131, 4: 80}
	actual := BucketCounts{1: 2900, 2: 3400, 3: 1180, 4: 100}

	report := v.Validate("HITACHI", expected, actual)
	assert.True(t, report.OverallPass)
	require.Len(t, report.Buckets, 4)
	for _, b := range report.Buckets {
		assert.True(t, b.WithinTolerance, "bucket %d", b.Bucket)
	}

	// 桶顺序升序且差值符号保留
	assert.Equal(t, 1, report.Buckets[0].Bucket)
	assert.Equal(t, 55, report.Buckets[0].Difference)
	assert.Equal(t, -117, report.Buckets[1].Difference)
}

// TestValidate_UnionBuckets 仅出现在一侧的桶也参与对比
func TestValidate_UnionBuckets(t *testing.T) {
	v := NewDistributionValidator(DefaultRuleConfig())

	report := v.Validate("SIM", BucketCounts{1: 2000}, BucketCounts{3: 60})
	require.Len(t, report.Buckets, 2)
	// 桶 1：actual 缺失按 0 计
	assert.Equal(t, -2000, report.Buckets[0].Difference)
	assert.False(t, report.Buckets[0].WithinTolerance)
	// 桶 3：expected 缺失按 0 计，差值 60 超出下限 50
	assert.Equal(t, 60, report.Buckets[1].Difference)
	assert.False(t, report.Buckets[1].WithinTolerance)
}

// TestRemediation_Ordering 整改项按 |差值| 降序，零差值不产生整改项
func TestRemediation_Ordering(t *testing.T) {
	v := NewDistributionValidator(DefaultRuleConfig())

	expected := BucketCounts{1: 1000, 2: 1000, 3: 1000}
	actual := BucketCounts{1: 1030, 2: 1000, 3: 1200}

	report := v.Validate("SIM", expected, actual)
	require.Len(t, report.Remediation, 2)
	assert.Equal(t, 3, report.Remediation[0].Bucket)
	assert.Equal(t, 200, report.Remediation[0].Difference)
	assert.Equal(t, 1, report.Remediation[1].Bucket)

	// 超差 4 倍容差 ⇒ 工作量 HIGH、价值 HIGH
	assert.Equal(t, "HIGH", report.Remediation[0].Effort)
	assert.Equal(t, "HIGH", report.Remediation[0].Value)
	// 容差内小幅漂移 ⇒ 工作量 LOW
	assert.Equal(t, "LOW", report.Remediation[1].Effort)
}

// TestValidateByVendor 分 vendor 校验并生成 combined 汇总
func TestValidateByVendor(t *testing.T) {
	v := NewDistributionValidator(DefaultRuleConfig())

	expected := map[string]BucketCounts{
		"HITACHI":      {1: 1000, 2: 500},
		"SIM":          {1: 400, 2: 300},
		CombinedVendor: {1: 1400, 2: 800},
	}
	actuals := map[string]BucketCounts{
		"HITACHI": {1: 1010, 2: 490},
		"SIM":     {1: 395, 2: 310},
	}

	reports := v.ValidateByVendor(expected, actuals)
	require.Len(t, reports, 3)
	assert.True(t, reports["HITACHI"].OverallPass)
	assert.True(t, reports["SIM"].OverallPass)

	combined := reports[CombinedVendor]
	require.NotNil(t, combined)
	assert.True(t, combined.OverallPass)
	// combined 实际值 = 各 vendor 实际值逐桶相加
	assert.Equal(t, 1405, combined.Buckets[0].Actual)
	assert.Equal(t, 800, combined.Buckets[1].Actual)
}

// TestBucketCounts_AddAssociative 归并加法可结合：分片顺序不影响结果
func TestBucketCounts_AddAssociative(t *testing.T) {
	a := BucketCounts{1: 10, 2: 5}
	b := BucketCounts{2: 7, 3: 1}
	c := BucketCounts{1: 2}

	left := BucketCounts{}
	left.Add(a)
	left.Add(b)
	left.Add(c)

	right := BucketCounts{}
	right.Add(c)
	right.Add(b)
	right.Add(a)

	assert.Equal(t, left, right)
	assert.Equal(t, 25, left.Total())
}

// TestDrilldown 规则变更前后对比：迁移记录集 + 透视表
func TestDrilldown(t *testing.T) {
	before := []model.FlowRecordResult{
		{CaseID: "C1", FlowCode: 0},
		{CaseID: "C2", FlowCode: 2},
		{CaseID: "C3", FlowCode: 2},
		{CaseID: "C4", FlowCode: 3},
	}
	after := []model.FlowRecordResult{
		{CaseID: "C1", FlowCode: 1}, // 0→1
		{CaseID: "C2", FlowCode: 2}, // 不变
		{CaseID: "C3", FlowCode: 3}, // 2→3
		{CaseID: "C4", FlowCode: 3}, // 不变
		{CaseID: "C5", FlowCode: 1}, // 新出现的 Case 不计入迁移
	}

	report := Drilldown(before, after)
	require.Len(t, report.ChangedRecords, 2)
	assert.Equal(t, "C1", report.ChangedRecords[0].CaseID)
	assert.Equal(t, 0, report.ChangedRecords[0].OldBucket)
	assert.Equal(t, 1, report.ChangedRecords[0].NewBucket)

	require.Len(t, report.Pivot, 2)
	assert.Equal(t, model.PivotCell{OldBucket: 0, NewBucket: 1, Count: 1}, report.Pivot[0])
	assert.Equal(t, model.PivotCell{OldBucket: 2, NewBucket: 3, Count: 1}, report.Pivot[1])
}
