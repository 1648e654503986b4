package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/macho715/HVDC-PJT-sub001/pkg/logger"
)

// ErrorHandler 统一错误处理中间件
// 捕获 handler panic 与挂在 gin.Context 上的业务错误
func ErrorHandler(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Errorf(c.Request.Context(), "[HTTP] Panic recovered: %s %s, panic=%v",
					c.Request.Method, c.Request.URL.Path, r)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"meta": gin.H{
						"code":    http.StatusInternalServerError,
						"message": "internal server error",
					},
				})
			}
		}()

		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			log.Errorf(c.Request.Context(), "[HTTP] Request error: %s %s, err=%v",
				c.Request.Method, c.Request.URL.Path, err)
			if !c.Writer.Written() {
				c.JSON(http.StatusInternalServerError, gin.H{
					"meta": gin.H{
						"code":    http.StatusInternalServerError,
						"message": err.Error(),
					},
				})
			}
		}
	}
}
