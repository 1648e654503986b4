package business

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/macho715/HVDC-PJT-sub001/common/entity"
	"github.com/macho715/HVDC-PJT-sub001/common/model"
	"github.com/macho715/HVDC-PJT-sub001/pkg/idgen"
	"github.com/macho715/HVDC-PJT-sub001/pkg/infra/mysql"
	"github.com/macho715/HVDC-PJT-sub001/pkg/infra/redis"
	"github.com/macho715/HVDC-PJT-sub001/pkg/lmstfy"
	"github.com/macho715/HVDC-PJT-sub001/pkg/logger"
)

// SubmissionService 批次受理服务（apiserver 侧）
// 职责：落库批次 → 发布分类任务 → Smart Wait 等待结果
type SubmissionService struct {
	batchDAO      *mysql.BatchDAO
	lmstfyClient  *lmstfy.Client
	classifyQueue string
	pubsub        *redis.PubSub
	notifyChannel string
	logger        logger.Logger
}

// Smart Wait 上限，超出按上限截断
const maxWaitSeconds = 60

// NewSubmissionService 创建批次受理服务
func NewSubmissionService(
	batchDAO *mysql.BatchDAO,
	lmstfyClient *lmstfy.Client,
	classifyQueue string,
	pubsub *redis.PubSub,
	notifyChannel string,
	log logger.Logger,
) *SubmissionService {
	return &SubmissionService{
		batchDAO:      batchDAO,
		lmstfyClient:  lmstfyClient,
		classifyQueue: classifyQueue,
		pubsub:        pubsub,
		notifyChannel: notifyChannel,
		logger:        log,
	}
}

// SubmitBatch 受理批量分类请求
// 1. 生成批次 ID 并落库（状态 CLASSIFYING）
// 2. 发布分类任务到队列
// 3. waitSeconds > 0 时 Smart Wait：订阅完成通知，超时返回处理中
func (s *SubmissionService) SubmitBatch(ctx context.Context, vendor string, rows []map[string]interface{}, waitSeconds int) (*entity.Batch, error) {
	batchID := fmt.Sprintf("%d", idgen.GenerateID())
	requestID := uuid.New().String()
	if waitSeconds > maxWaitSeconds {
		waitSeconds = maxWaitSeconds
	}

	// 1. 落库
	if err := s.batchDAO.CreateBatch(ctx, batchID, vendor, rows); err != nil {
		return nil, fmt.Errorf("save batch failed: %w", err)
	}

	// 2. Smart Wait 先订阅再发布，避免错过通知
	var notifyCh <-chan *redis.BatchNotification
	var stopWait func()
	if waitSeconds > 0 && s.pubsub != nil {
		notifyCh, stopWait = s.subscribeBatch(ctx, batchID)
		defer stopWait()
	}

	// 3. 发布分类任务
	if err := s.publishJob(ctx, requestID, batchID, model.ActionTypeFlowClassify, &model.FlowClassifyBusinessData{
		BatchID: batchID,
		Vendor:  vendor,
		Rows:    rows,
	}); err != nil {
		// 发布失败批次立即标记失败，调用方无需等 TTR
		_ = s.batchDAO.UpdateFlowResult(ctx, batchID, nil, entity.BatchStatusFailed, err.Error())
		return nil, fmt.Errorf("publish classify job failed: %w", err)
	}

	batch := &entity.Batch{ID: batchID, Vendor: vendor, Status: entity.BatchStatusClassifying, RecordCount: len(rows)}

	// 4. Smart Wait
	if notifyCh != nil {
		timeout := time.Duration(waitSeconds) * time.Second
		select {
		case <-ctx.Done():
			return batch, nil
		case <-time.After(timeout):
			s.logger.Infof(ctx, "[SubmissionService] Smart wait timeout: batch_id=%s", batchID)
			return batch, nil
		case n := <-notifyCh:
			if n != nil {
				// 结果已落库，读回完整批次
				stored, err := s.batchDAO.GetBatchByID(ctx, batchID)
				if err == nil && stored != nil {
					return stored, nil
				}
				s.logger.Warnf(ctx, "[SubmissionService] Reload batch after notify failed: batch_id=%s, err=%v", batchID, err)
			}
			return batch, nil
		}
	}

	return batch, nil
}

// GetBatch 查询批次
func (s *SubmissionService) GetBatch(ctx context.Context, batchID string) (*entity.Batch, error) {
	return s.batchDAO.GetBatchByID(ctx, batchID)
}

// ListBatches 按 vendor/状态查询批次列表
func (s *SubmissionService) ListBatches(ctx context.Context, vendor, status string, limit, offset int) ([]entity.Batch, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.batchDAO.ListBatchesByVendor(ctx, vendor, status, limit, offset)
}

// SubmitValidation 受理分布校验请求（异步，结果走回调）
func (s *SubmissionService) SubmitValidation(ctx context.Context, data *model.DistributionValidateBusinessData) (string, error) {
	requestID := uuid.New().String()
	if err := s.publishJob(ctx, requestID, requestID, model.ActionTypeDistributionValidate, data); err != nil {
		return "", fmt.Errorf("publish validate job failed: %w", err)
	}
	return requestID, nil
}

// SubmitReconciliation 受理库存对账请求（异步，结果走回调）
func (s *SubmissionService) SubmitReconciliation(ctx context.Context, data *model.InventoryReconcileBusinessData) (string, error) {
	requestID := uuid.New().String()
	if err := s.publishJob(ctx, requestID, requestID, model.ActionTypeInventoryReconcile, data); err != nil {
		return "", fmt.Errorf("publish reconcile job failed: %w", err)
	}
	return requestID, nil
}

// publishJob 组装标准 Job 信封并发布
func (s *SubmissionService) publishJob(ctx context.Context, requestID, id, actionType string, data interface{}) error {
	job := model.FlowClassifyJob{
		Payload: model.FlowClassifyPayload{
			Data: model.FlowClassifyData{
				RequestID:  requestID,
				OrgID:      "0",
				ActionType: actionType,
				ID:         id,
				Data:       data,
			},
		},
	}

	jobJSON, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job failed: %w", err)
	}

	if err := s.lmstfyClient.Publish(s.classifyQueue, jobJSON, 0, 0); err != nil {
		return err
	}

	s.logger.Infof(ctx, "[SubmissionService] Job published: action_type=%s, id=%s, request_id=%s",
		actionType, id, requestID)
	return nil
}

// subscribeBatch 订阅指定批次的完成通知
func (s *SubmissionService) subscribeBatch(ctx context.Context, batchID string) (<-chan *redis.BatchNotification, func()) {
	sub := s.pubsub.Subscribe(ctx, s.notifyChannel)
	out := make(chan *redis.BatchNotification, 1)
	done := make(chan struct{})

	go func() {
		defer close(out)
		ch := sub.Channel()
		for {
			select {
			case <-done:
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var n redis.BatchNotification
				if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
					s.logger.Warnf(ctx, "[SubmissionService] Bad notification payload: %v", err)
					continue
				}
				if n.BatchID == batchID {
					out <- &n
					return
				}
			}
		}
	}()

	stop := func() {
		close(done)
		_ = sub.Close()
	}
	return out, stop
}
