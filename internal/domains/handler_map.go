package domains

import (
	"github.com/macho715/HVDC-PJT-sub001/common/model"
	"github.com/macho715/HVDC-PJT-sub001/internal/domains/common"
	"github.com/macho715/HVDC-PJT-sub001/internal/domains/handlers/classify"
	"github.com/macho715/HVDC-PJT-sub001/internal/domains/handlers/reconcile"
	"github.com/macho715/HVDC-PJT-sub001/internal/domains/handlers/validate"
)

// HandlerMap 路由表（ActionType → Handler 构造函数）
var HandlerMap = map[string]common.HandlerServProc{
	model.ActionTypeFlowClassify:         classify.NewClassifyHandler,
	model.ActionTypeDistributionValidate: validate.NewValidateHandler,
	model.ActionTypeInventoryReconcile:   reconcile.NewReconcileHandler,
}
