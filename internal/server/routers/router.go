package routers

import (
	"github.com/gin-gonic/gin"

	"github.com/macho715/HVDC-PJT-sub001/internal/server/handlers/batch"
	"github.com/macho715/HVDC-PJT-sub001/internal/server/handlers/reconciliation"
	"github.com/macho715/HVDC-PJT-sub001/internal/server/handlers/validation"
	"github.com/macho715/HVDC-PJT-sub001/internal/server/middlewares"
	"github.com/macho715/HVDC-PJT-sub001/pkg/logger"
)

// SetupRoutes 配置所有路由，使用 Route Group 分类
func SetupRoutes(
	batchHandler *batch.BatchHandler,
	validationHandler *validation.ValidationHandler,
	reconciliationHandler *reconciliation.ReconciliationHandler,
	log logger.Logger,
) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.CORS())
	r.Use(middlewares.Logger(log))
	r.Use(middlewares.ErrorHandler(log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "flow-apiserver",
			"message": "Service is running",
		})
	})

	v1 := r.Group("/api/v1")
	{
		batches := v1.Group("/batches")
		{
			batches.POST("", batchHandler.Create)
			batches.GET("", batchHandler.List)
			batches.GET("/:id", batchHandler.Get)
		}

		validations := v1.Group("/validations")
		{
			validations.POST("", validationHandler.Create)
		}

		reconciliations := v1.Group("/reconciliations")
		{
			reconciliations.POST("", reconciliationHandler.Create)
		}
	}

	return r
}
