package business

import (
	"context"
	"encoding/json"
	"time"

	"github.com/macho715/HVDC-PJT-sub001/common/model"
	"github.com/macho715/HVDC-PJT-sub001/internal/engine"
	"github.com/macho715/HVDC-PJT-sub001/pkg/errorutil"
	"github.com/macho715/HVDC-PJT-sub001/pkg/lmstfy"
	"github.com/macho715/HVDC-PJT-sub001/pkg/logger"
)

// ValidationService 分布校验服务
// 将实际 Flow Code 分布与目标分布对比，按 vendor 出具校验报告
type ValidationService struct {
	engine        *engine.Engine
	lmstfyClient  *lmstfy.Client
	callbackQueue string
	logger        logger.Logger
}

// NewValidationService 创建分布校验服务
func NewValidationService(eng *engine.Engine, lmstfyClient *lmstfy.Client, callbackQueue string, log logger.Logger) *ValidationService {
	return &ValidationService{
		engine:        eng,
		lmstfyClient:  lmstfyClient,
		callbackQueue: callbackQueue,
		logger:        log,
	}
}

// ValidateInput 分布校验输入
type ValidateInput struct {
	RequestID string
	ID        string
	Data      *model.DistributionValidateBusinessData
}

// ExecuteValidation 执行分布校验并发送回调
// 已有计数直接校验；只给了批次数据则先分类再校验
func (s *ValidationService) ExecuteValidation(ctx context.Context, input *ValidateInput) error {
	data := input.Data

	if len(data.Expected) == 0 {
		return errorutil.NonRetriable("expected distribution is required")
	}

	// 1. 组装每个 vendor 的实际分布
	actuals := make(map[string]engine.BucketCounts)
	for vendor, counts := range data.Actual {
		bc := make(engine.BucketCounts, len(counts))
		for bucket, n := range counts {
			bc[bucket] = n
		}
		actuals[vendor] = bc
	}
	for _, batch := range data.Batches {
		result := s.engine.ClassifyRows(ctx, batch.BatchID, batch.Vendor, batch.Rows)
		bc, ok := actuals[batch.Vendor]
		if !ok {
			bc = make(engine.BucketCounts)
			actuals[batch.Vendor] = bc
		}
		bc.Add(engine.BucketCounts(result.BucketCounts))
	}

	if len(actuals) == 0 {
		return errorutil.NonRetriable("neither actual counts nor batches provided")
	}

	// 2. 目标分布：下标即 Flow Code
	expected := make(map[string]engine.BucketCounts, len(data.Expected))
	for vendor, counts := range data.Expected {
		bc := make(engine.BucketCounts, len(counts))
		for bucket, n := range counts {
			bc[bucket] = n
		}
		expected[vendor] = bc
	}

	// 3. 按 vendor 校验（含 combined 汇总）
	reports := s.engine.Validator().ValidateByVendor(expected, actuals)

	s.logger.Infof(ctx, "[ValidationService] Validation done: id=%s, vendors=%d", input.ID, len(reports))

	// 4. 每份报告单独发一条回调
	for vendor, report := range reports {
		callback := model.FlowBatchCallback{
			RequestID:   input.RequestID,
			BatchID:     input.ID,
			Vendor:      vendor,
			Status:      model.CallbackStatusSuccess,
			Report:      report,
			ProcessedAt: time.Now().Unix(),
		}
		if !report.OverallPass {
			// 超差不是处理失败：回调仍是 SUCCESS，结果在报告里
			s.logger.Warnf(ctx, "[ValidationService] Distribution out of tolerance: id=%s, vendor=%s", input.ID, vendor)
		}

		callbackJSON, err := json.Marshal(callback)
		if err != nil {
			return errorutil.NonRetriableWithDetails("marshal validation callback failed", err.Error())
		}
		if err := s.lmstfyClient.Publish(s.callbackQueue, callbackJSON, 0, 0); err != nil {
			return errorutil.RetriableWithDetails("publish validation callback failed", err.Error())
		}
	}

	return nil
}
