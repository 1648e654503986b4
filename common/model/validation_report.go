package model

// BucketResult 单个 Flow Code 桶的校验结果
type BucketResult struct {
	Bucket          int  `json:"bucket"`
	Expected        int  `json:"expected"`
	Actual          int  `json:"actual"`
	Difference      int  `json:"difference"` // actual - expected
	Tolerance       int  `json:"tolerance"`  // max(floor, expected*relative)
	WithinTolerance bool `json:"within_tolerance"`
}

// RemediationItem 整改优先级项（按 |difference| 降序排列，仅供规划参考）
type RemediationItem struct {
	Bucket     int    `json:"bucket"`
	Difference int    `json:"difference"`
	Effort     string `json:"effort"` // LOW/MEDIUM/HIGH
	Value      string `json:"value"`  // LOW/MEDIUM/HIGH
}

// ValidationReport 批量分布校验报告
// ToleranceExceeded 以数据形式呈现（WithinTolerance=false），不抛错
type ValidationReport struct {
	Vendor      string            `json:"vendor"` // vendor 名或 "combined"
	Buckets     []BucketResult    `json:"buckets"`
	OverallPass bool              `json:"overall_pass"`
	Remediation []RemediationItem `json:"remediation,omitempty"`
}

// BucketChange 两次分类之间单条记录的桶迁移
type BucketChange struct {
	CaseID    string `json:"case_id"`
	OldBucket int    `json:"old_bucket"`
	NewBucket int    `json:"new_bucket"`
}

// PivotCell 桶迁移透视表单元 (oldBucket, newBucket) → count
type PivotCell struct {
	OldBucket int `json:"old_bucket"`
	NewBucket int `json:"new_bucket"`
	Count     int `json:"count"`
}

// DrilldownReport 两次分类运行的对比报告（规则变更前后）
type DrilldownReport struct {
	ChangedRecords []BucketChange `json:"changed_records"`
	Pivot          []PivotCell    `json:"pivot"`
}
