package api

import (
	"net/http"

	"github.com/SlpAus/gluecksrad-wheel-backend/internal/admin"
	"github.com/SlpAus/gluecksrad-wheel-backend/internal/platform/database"
	"github.com/SlpAus/gluecksrad-wheel-backend/internal/spin"
	"github.com/SlpAus/gluecksrad-wheel-backend/internal/tld"
	"github.com/SlpAus/gluecksrad-wheel-backend/internal/user"
	"github.com/gin-gonic/gin"
)

// SetupRoutes 注册项目的所有API路由。
func SetupRoutes(router *gin.Engine, spinHandler *spin.Handler, adminHandler *admin.Handler, tlds *tld.Set) {
	// 路由未区分方法时返回405而不是404
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"ok": false, "message": "Method Not Allowed"})
	})

	api := router.Group("/api")
	{
		// claim需要确保identity cookie存在，首次访问时会种下
		api.POST("/claim-spin", user.EnsureIdentityCookieMiddleware(), spinHandler.PostClaim)

		// 抽奖相关的路由组 /api/spin
		spinRoutes := api.Group("/spin", user.LoadIdentityMiddleware())
		{
			spinRoutes.POST("", spinHandler.PostSpin)
			spinRoutes.GET("/state", spinHandler.GetState)
			spinRoutes.GET("/wins", spinHandler.GetWins)
			spinRoutes.GET("/prizes", spinHandler.GetPrizes)
		}

		// 管理接口
		api.GET("/admin/emails", adminHandler.ListEmails)

		// 健康检查
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"ok":         true,
				"tldsLoaded": tlds.Available(),
				"tldsCount":  tlds.Count(),
				"redis":      database.IsRedisHealthy(),
			})
		})
	}
}
