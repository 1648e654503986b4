package business

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/macho715/HVDC-PJT-sub001/common/model"
	"github.com/macho715/HVDC-PJT-sub001/internal/engine"
	"github.com/macho715/HVDC-PJT-sub001/pkg/errorutil"
	"github.com/macho715/HVDC-PJT-sub001/pkg/lmstfy"
	"github.com/macho715/HVDC-PJT-sub001/pkg/logger"
)

// ClassificationService 批量分类服务（仅负责分类逻辑，不涉及 DB 操作）
// 职责：执行分类 → 发送回调到 callback 队列；落库由回调消费侧完成
type ClassificationService struct {
	engine        *engine.Engine
	lmstfyClient  *lmstfy.Client
	callbackQueue string
	expected      map[string]engine.BucketCounts // 按 vendor 的目标分布（可为空）
	logger        logger.Logger
}

// NewClassificationService 创建批量分类服务
func NewClassificationService(
	eng *engine.Engine,
	lmstfyClient *lmstfy.Client,
	callbackQueue string,
	expected map[string]engine.BucketCounts,
	log logger.Logger,
) *ClassificationService {
	return &ClassificationService{
		engine:        eng,
		lmstfyClient:  lmstfyClient,
		callbackQueue: callbackQueue,
		expected:      expected,
		logger:        log,
	}
}

// ClassifyInput 批量分类输入
type ClassifyInput struct {
	RequestID string
	BatchID   string
	Vendor    string
	Rows      []map[string]interface{}
}

// ExecuteClassification 执行批量分类并发送回调
// 分类本身永不失败（行级问题回落确定性默认值）；回调发送失败返回可重试错误
func (s *ClassificationService) ExecuteClassification(ctx context.Context, input *ClassifyInput) error {
	// 1. 分类（纯计算，无 IO）
	result := s.engine.ClassifyRows(ctx, input.BatchID, input.Vendor, input.Rows)

	s.logger.Infof(ctx, "[ClassificationService] Batch classified: batch_id=%s, records=%d, buckets=%v",
		input.BatchID, result.RecordCount, result.BucketCounts)

	// 2. 目标分布已配置时附带校验报告
	var report *model.ValidationReport
	if exp, ok := s.expected[input.Vendor]; ok {
		report = s.engine.Validator().Validate(input.Vendor, exp, result.BucketCounts)
	}

	// 3. 发送回调
	callback := model.FlowBatchCallback{
		RequestID:   input.RequestID,
		BatchID:     input.BatchID,
		Vendor:      input.Vendor,
		Status:      model.CallbackStatusSuccess,
		Result:      result,
		Report:      report,
		ProcessedAt: time.Now().Unix(),
	}
	return s.publishCallback(ctx, &callback)
}

// ReportFailure 分类失败收尾：发送失败回调（回调消费侧负责标记批次失败）
func (s *ClassificationService) ReportFailure(ctx context.Context, input *ClassifyInput, cause error) error {
	callback := model.FlowBatchCallback{
		RequestID:   input.RequestID,
		BatchID:     input.BatchID,
		Vendor:      input.Vendor,
		Status:      model.CallbackStatusFailed,
		Error:       cause.Error(),
		ProcessedAt: time.Now().Unix(),
	}
	return s.publishCallback(ctx, &callback)
}

// publishCallback 序列化并发送回调消息
func (s *ClassificationService) publishCallback(ctx context.Context, callback *model.FlowBatchCallback) error {
	callbackJSON, err := json.Marshal(callback)
	if err != nil {
		return errorutil.NonRetriableWithDetails("marshal callback failed", err.Error())
	}

	// ttl=0 永不过期，delay=0 立即可用
	if err := s.lmstfyClient.Publish(s.callbackQueue, callbackJSON, 0, 0); err != nil {
		return errorutil.RetriableWithDetails(
			fmt.Sprintf("publish callback to %s failed", s.callbackQueue), err.Error())
	}

	return nil
}
