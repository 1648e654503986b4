package engine

import (
	"math"
	"sort"

	"github.com/macho715/HVDC-PJT-sub001/common/model"
)

// CombinedVendor 跨 vendor 汇总桶的键名
const CombinedVendor = "combined"

// BucketCounts Flow Code → 条数
// 分片归并只做结合律加法，容差判定必须在完整归并之后执行
type BucketCounts map[int]int

// Add 归并另一组计数（可交换、可结合）
func (b BucketCounts) Add(other BucketCounts) {
	for bucket, n := range other {
		b[bucket] += n
	}
}

// Total 总条数
func (b BucketCounts) Total() int {
	total := 0
	for _, n := range b {
		total += n
	}
	return total
}

// DistributionValidator 分布校验器
// 将批量分类结果与外部给定的目标分布对比；超差以数据形式上报，不抛错
type DistributionValidator struct {
	cfg *RuleConfig
}

// NewDistributionValidator 创建分布校验器
func NewDistributionValidator(cfg *RuleConfig) *DistributionValidator {
	return &DistributionValidator{cfg: cfg}
}

// ToleranceFor 单桶容差：max(下限, expected × 相对容差)
// 重点桶可通过 BucketFloors 单独收紧下限
func (v *DistributionValidator) ToleranceFor(bucket, expected int) int {
	floor := v.cfg.Tolerance.Floor
	if override, ok := v.cfg.Tolerance.BucketFloors[bucket]; ok {
		floor = override
	}
	relative := int(math.Round(float64(expected) * v.cfg.Tolerance.Relative))
	if relative > floor {
		return relative
	}
	return floor
}

// Validate 校验一组桶计数
// 边界语义：|difference| == tolerance 判为通过，仅严格超出才失败
func (v *DistributionValidator) Validate(vendor string, expected, actual BucketCounts) *model.ValidationReport {
	buckets := unionBuckets(expected, actual)

	report := &model.ValidationReport{
		Vendor:      vendor,
		Buckets:     make([]model.BucketResult, 0, len(buckets)),
		OverallPass: true,
	}

	for _, bucket := range buckets {
		exp := expected[bucket]
		act := actual[bucket]
		diff := act - exp
		tol := v.ToleranceFor(bucket, exp)
		within := abs(diff) <= tol

		report.Buckets = append(report.Buckets, model.BucketResult{
			Bucket:          bucket,
			Expected:        exp,
			Actual:          act,
			Difference:      diff,
			Tolerance:       tol,
			WithinTolerance: within,
		})

		if !within {
			report.OverallPass = false
		}
	}

	report.Remediation = v.remediation(report.Buckets)

	return report
}

// ValidateByVendor 按 vendor 分别校验并附带 combined 汇总
// expected 的 key 为 vendor 名或 CombinedVendor；actuals 按 vendor 给出
func (v *DistributionValidator) ValidateByVendor(
	expected map[string]BucketCounts,
	actuals map[string]BucketCounts,
) map[string]*model.ValidationReport {
	reports := make(map[string]*model.ValidationReport, len(expected))

	combined := make(BucketCounts)
	for vendor, actual := range actuals {
		combined.Add(actual)
		if exp, ok := expected[vendor]; ok {
			reports[vendor] = v.Validate(vendor, exp, actual)
		}
	}

	if exp, ok := expected[CombinedVendor]; ok {
		reports[CombinedVendor] = v.Validate(CombinedVendor, exp, combined)
	}

	return reports
}

// remediation 整改优先级：按 |difference| 降序，附带工作量/业务价值标签（仅供规划）
func (v *DistributionValidator) remediation(buckets []model.BucketResult) []model.RemediationItem {
	items := make([]model.RemediationItem, 0, len(buckets))
	for _, b := range buckets {
		if b.Difference == 0 {
			continue
		}
		items = append(items, model.RemediationItem{
			Bucket:     b.Bucket,
			Difference: b.Difference,
			Effort:     remediationEffort(b),
			Value:      remediationValue(b),
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return abs(items[i].Difference) > abs(items[j].Difference)
	})

	return items
}

// remediationEffort 工作量估计：超差幅度越大，排查面越宽
func remediationEffort(b model.BucketResult) string {
	switch {
	case abs(b.Difference) > 2*b.Tolerance:
		return "HIGH"
	case abs(b.Difference) > b.Tolerance:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// remediationValue 业务价值估计：超差桶价值高于容差内的漂移
func remediationValue(b model.BucketResult) string {
	if !b.WithinTolerance {
		return "HIGH"
	}
	if abs(b.Difference)*2 > b.Tolerance {
		return "MEDIUM"
	}
	return "LOW"
}

// Drilldown 对比两次分类运行（规则变更前后）
// 产出桶迁移记录集与 (oldBucket, newBucket) → count 透视表
func Drilldown(before, after []model.FlowRecordResult) *model.DrilldownReport {
	oldByCase := make(map[string]int, len(before))
	for _, r := range before {
		oldByCase[r.CaseID] = r.FlowCode
	}

	report := &model.DrilldownReport{
		ChangedRecords: make([]model.BucketChange, 0),
	}
	pivot := make(map[[2]int]int)

	for _, r := range after {
		oldBucket, ok := oldByCase[r.CaseID]
		if !ok || oldBucket == r.FlowCode {
			continue
		}
		report.ChangedRecords = append(report.ChangedRecords, model.BucketChange{
			CaseID:    r.CaseID,
			OldBucket: oldBucket,
			NewBucket: r.FlowCode,
		})
		pivot[[2]int{oldBucket, r.FlowCode}]++
	}

	cells := make([][2]int, 0, len(pivot))
	for cell := range pivot {
		cells = append(cells, cell)
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i][0] != cells[j][0] {
			return cells[i][0] < cells[j][0]
		}
		return cells[i][1] < cells[j][1]
	})

	for _, cell := range cells {
		report.Pivot = append(report.Pivot, model.PivotCell{
			OldBucket: cell[0],
			NewBucket: cell[1],
			Count:     pivot[cell],
		})
	}

	return report
}

// unionBuckets 期望与实际计数涉及的全部桶（升序）
func unionBuckets(expected, actual BucketCounts) []int {
	seen := make(map[int]bool, len(expected)+len(actual))
	for b := range expected {
		seen[b] = true
	}
	for b := range actual {
		seen[b] = true
	}
	buckets := make([]int, 0, len(seen))
	for b := range seen {
		buckets = append(buckets, b)
	}
	sort.Ints(buckets)
	return buckets
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
