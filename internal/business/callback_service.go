package business

import (
	"context"
	"fmt"
	"time"

	"github.com/macho715/HVDC-PJT-sub001/common/entity"
	"github.com/macho715/HVDC-PJT-sub001/common/model"
	"github.com/macho715/HVDC-PJT-sub001/pkg/infra/mysql"
	"github.com/macho715/HVDC-PJT-sub001/pkg/infra/redis"
	"github.com/macho715/HVDC-PJT-sub001/pkg/logger"
)

// CallbackService 回调处理服务（唯一的 flow_batches 写入方）
// worker 侧不落库，所有结果经回调队列在此统一写入
type CallbackService struct {
	batchDAO      *mysql.BatchDAO
	pubsub        *redis.PubSub
	notifyChannel string
	logger        logger.Logger
}

// NewCallbackService 创建回调处理服务
func NewCallbackService(batchDAO *mysql.BatchDAO, pubsub *redis.PubSub, notifyChannel string, log logger.Logger) *CallbackService {
	return &CallbackService{
		batchDAO:      batchDAO,
		pubsub:        pubsub,
		notifyChannel: notifyChannel,
		logger:        log,
	}
}

// HandleCallback 处理一条回调消息
// 1. 分类回调：结果落库并发布 Smart Wait 通知
// 2. 校验/对账回调：无批次落库，仅记录报告
// 返回 error 时调用方不 Ack，消息按 TTR 重投
func (s *CallbackService) HandleCallback(ctx context.Context, callback *model.FlowBatchCallback) error {
	// 分类回调可能随带校验报告；没有分类结果的报告类回调不绑定批次记录
	if callback.Report != nil {
		s.logValidationReport(ctx, callback)
		if callback.Result == nil {
			return nil
		}
	}
	if callback.Reconciliation != nil {
		s.logReconciliation(ctx, callback)
		return nil
	}

	if callback.BatchID == "" {
		// 无批次 ID 无法落库，重投也无济于事，记录后吞掉
		s.logger.Warnf(ctx, "[CallbackService] Callback without batch_id: request_id=%s, status=%s",
			callback.RequestID, callback.Status)
		return nil
	}

	// 1. 落库
	var status string
	if callback.Status == model.CallbackStatusSuccess && callback.Result != nil {
		status = entity.BatchStatusClassified
		if err := s.batchDAO.UpdateFlowResult(ctx, callback.BatchID, callback.Result, status, ""); err != nil {
			return fmt.Errorf("update flow result failed: %w", err)
		}
		s.logger.Infof(ctx, "[CallbackService] Batch classified: batch_id=%s, records=%d",
			callback.BatchID, callback.Result.RecordCount)
	} else {
		status = entity.BatchStatusFailed
		if err := s.batchDAO.UpdateFlowResult(ctx, callback.BatchID, nil, status, callback.Error); err != nil {
			return fmt.Errorf("update batch status failed: %w", err)
		}
		s.logger.Warnf(ctx, "[CallbackService] Batch failed: batch_id=%s, error=%s",
			callback.BatchID, callback.Error)
	}

	// 2. 发布完成通知（Smart Wait）；通知失败不影响落库结果
	if s.pubsub != nil {
		notification := &redis.BatchNotification{
			BatchID:   callback.BatchID,
			Vendor:    callback.Vendor,
			Status:    status,
			Timestamp: time.Now().Unix(),
		}
		if err := s.pubsub.PublishBatchComplete(ctx, s.notifyChannel, notification); err != nil {
			s.logger.Warnf(ctx, "[CallbackService] Publish notification failed: batch_id=%s, err=%v",
				callback.BatchID, err)
		}
	}

	return nil
}

func (s *CallbackService) logValidationReport(ctx context.Context, callback *model.FlowBatchCallback) {
	report := callback.Report
	s.logger.Infof(ctx, "[CallbackService] Validation report: request_id=%s, vendor=%s, overall_pass=%v",
		callback.RequestID, report.Vendor, report.OverallPass)
	for _, b := range report.Buckets {
		if b.WithinTolerance {
			continue
		}
		s.logger.Warnf(ctx, "[CallbackService] Distribution mismatch: vendor=%s, bucket=%d, expected=%d, actual=%d, tolerance=%d",
			report.Vendor, b.Bucket, b.Expected, b.Actual, b.Tolerance)
	}
}

func (s *CallbackService) logReconciliation(ctx context.Context, callback *model.FlowBatchCallback) {
	rec := callback.Reconciliation
	s.logger.Infof(ctx, "[CallbackService] Reconciliation done: request_id=%s, consistency_rate=%.4f, anomalies=%d",
		callback.RequestID, rec.ConsistencyRate, len(rec.Anomalies))
	for _, a := range rec.Anomalies {
		s.logger.Warnf(ctx, "[CallbackService] Inventory anomaly: kind=%s, severity=%s, item=%s, detail=%s",
			a.Kind, a.Severity, a.CaseID, a.Detail)
	}
}
