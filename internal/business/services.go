package business

import (
	"context"
)

// ServicesContextKey Context 注入键
const ServicesContextKey = "flow_services"

// Services 业务服务集合（worker 启动时装配，经 Context 传给 Handler）
type Services struct {
	Classification *ClassificationService
	Validation     *ValidationService
	Reconciliation *ReconciliationService
}

// FromContext 从 Context 提取服务集合
func FromContext(ctx context.Context) *Services {
	services, ok := ctx.Value(ServicesContextKey).(*Services)
	if !ok {
		return nil
	}
	return services
}
