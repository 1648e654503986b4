package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/macho715/HVDC-PJT-sub001/common/model"
)

// Engine 分类引擎（组装触碰提取、Flow Code 分类与最终位置解析）
// 单条分类是纯函数：同一记录 + 同一规则 ⇒ 同一结果（幂等），可任意并行
type Engine struct {
	cfg        *RuleConfig
	extractor  *Extractor
	classifier *Classifier
	resolver   *Resolver
	validator  *DistributionValidator
}

// New 创建分类引擎
// 配置校验在此执行：规则配置问题在任何记录被处理之前即失败
func New(cfg *RuleConfig) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultRuleConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine config invalid: %w", err)
	}

	return &Engine{
		cfg:        cfg,
		extractor:  NewExtractor(cfg),
		classifier: NewClassifier(cfg),
		resolver:   NewResolver(cfg),
		validator:  NewDistributionValidator(cfg),
	}, nil
}

// Config 当前规则配置（只读）
func (e *Engine) Config() *RuleConfig {
	return e.cfg
}

// Validator 分布校验器
func (e *Engine) Validator() *DistributionValidator {
	return e.validator
}

// ClassifyRecord 单条记录分类
// 行级问题一律回落到确定性默认值，永不报错；一条坏记录不会中断整批
func (e *Engine) ClassifyRecord(vendor string, row Row) model.FlowRecordResult {
	touches := e.extractor.Extract(row)

	flowCode := e.classifier.Classify(touches)
	finalLocation, finalTime := e.resolver.Resolve(row, touches)

	return model.FlowRecordResult{
		CaseID:                 e.caseID(row),
		Vendor:                 vendor,
		WarehouseTouchCount:    touches.DistinctWarehouseCount(),
		FlowCode:               flowCode,
		FinalLocation:          finalLocation,
		FinalLocationTimestamp: finalTime,
		TrueSingleHop:          e.classifier.TrueSingleHop(touches),
	}
}

// ClassifyBatch 批量分类（并行分片 + 归并）
// 记录级分类无共享可变状态，按下标分片给 N 个 goroutine；
// 分片桶计数用结合律加法归并，容差判定留给调用方在完整归并后执行
func (e *Engine) ClassifyBatch(ctx context.Context, batchID, vendor string, rows []Row) *model.FlowBatchResult {
	result := &model.FlowBatchResult{
		BatchID:      batchID,
		Vendor:       vendor,
		RecordCount:  len(rows),
		BucketCounts: make(map[int]int),
		Records:      make([]model.FlowRecordResult, len(rows)),
	}

	if len(rows) == 0 {
		return result
	}

	workers := e.cfg.BatchConcurrency
	if workers < 1 {
		workers = 1
	}
	if workers > len(rows) {
		workers = len(rows)
	}

	// 每个分片独立累计桶计数，结束后一次性归并
	partials := make([]BucketCounts, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		workerID := w
		partials[workerID] = make(BucketCounts)

		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := workerID; i < len(rows); i += workers {
				select {
				case <-ctx.Done():
					return
				default:
				}
				rec := e.ClassifyRecord(vendor, rows[i])
				if rec.CaseID == "" {
					rec.CaseID = fmt.Sprintf("%s-%d", batchID, i)
				}
				result.Records[i] = rec
				partials[workerID][rec.FlowCode]++
			}
		}()
	}
	wg.Wait()

	// 归并分片计数（可交换、可结合，与分片方式无关）
	merged := BucketCounts(result.BucketCounts)
	for _, partial := range partials {
		merged.Add(partial)
	}

	return result
}

// ClassifyRows JSON 行数据入口：map 行转类型化 Row 后批量分类
func (e *Engine) ClassifyRows(ctx context.Context, batchID, vendor string, rawRows []map[string]interface{}) *model.FlowBatchResult {
	rows := make([]Row, len(rawRows))
	for i, raw := range rawRows {
		rows[i] = RowFromMap(raw)
	}
	return e.ClassifyBatch(ctx, batchID, vendor, rows)
}

// caseID 从配置的 Case 列提取记录标识
func (e *Engine) caseID(row Row) string {
	v, ok := row.Lookup(e.cfg.CaseIDColumn)
	if !ok {
		return ""
	}
	switch v.Kind {
	case ValueText:
		return v.Text
	case ValueNumber:
		return fmt.Sprintf("%.0f", v.Number)
	}
	return ""
}
