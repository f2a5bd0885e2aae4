// Package router 提供 HTTP 路由配置
package router

import (
	"essay-duet-api/internal/interfaces/http/handler"

	"github.com/gin-gonic/gin"
)

// RegisterV1Routes 注册 v1 版本路由
func RegisterV1Routes(
	v1 *gin.RouterGroup,
	essayHandler *handler.EssayHandler,
	turnHandler *handler.TurnHandler,
) {
	// 文章管理
	essays := v1.Group("/essays")
	{
		essays.POST("", essayHandler.Create)
		essays.GET("/available", essayHandler.ListAvailable)
		essays.GET("/mine/created", essayHandler.ListCreated)
		essays.GET("/mine/joined", essayHandler.ListJoined)

		essays.GET("/:eid", essayHandler.Get)
		essays.POST("/:eid/opening", essayHandler.SubmitOpening)
		essays.POST("/:eid/join", essayHandler.Join)
		essays.POST("/:eid/export", essayHandler.Export)

		// 结束提议流程
		essays.POST("/:eid/finish/request", turnHandler.RequestFinish)
		essays.POST("/:eid/finish/decline", turnHandler.DeclineFinish)
	}

	// 回合提交走预览-确认两段式
	turns := v1.Group("/turns")
	{
		turns.POST("/preview", turnHandler.Preview)
		turns.POST("/confirm", turnHandler.Confirm)
	}
}
