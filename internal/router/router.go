package router

import (
	"github.com/fundlab/mfs/internal/blobstore"
	"github.com/fundlab/mfs/internal/config"
	"github.com/fundlab/mfs/internal/handler"
	"github.com/fundlab/mfs/internal/logic"
	"github.com/gin-gonic/gin"
)

func Setup(engine *logic.Engine, store blobstore.Store, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "milestone-funding-service",
		})
	})

	// API版本组
	v1 := r.Group("/api/v1")
	{
		projectHandler := handler.NewProjectHandler(engine)
		contributeHandler := handler.NewContributeHandler(engine)
		milestoneHandler := handler.NewMilestoneHandler(engine)

		// 项目相关路由
		projects := v1.Group("/projects")
		{
			projects.POST("", projectHandler.CreateProject)
			projects.GET("", projectHandler.GetProjects)
			projects.GET("/count", projectHandler.GetProjectCount)
			projects.GET("/:id", projectHandler.GetProject)
			projects.GET("/:id/stats", projectHandler.GetProjectStats)
			projects.GET("/:id/reward", projectHandler.GetProjectReward)

			// 贡献
			projects.POST("/:id/contributions", contributeHandler.SupportProject)
			projects.GET("/:id/contributions/:address", contributeHandler.GetContribution)
			projects.GET("/:id/supporters/:address", contributeHandler.IsSupporter)

			// 里程碑
			projects.GET("/:id/milestones/:index", milestoneHandler.GetMilestone)
			projects.POST("/:id/milestones/:index/release", milestoneHandler.ReleaseMilestone)
			projects.POST("/:id/milestones/:index/proposal", milestoneHandler.ProposeCompletion)
			projects.POST("/:id/milestones/:index/votes", milestoneHandler.Vote)
			projects.POST("/:id/milestones/:index/finalize", milestoneHandler.Finalize)
		}

		// 账户相关路由
		accounts := v1.Group("/accounts")
		{
			accounts.GET("/:address/contributions", contributeHandler.GetAccountContributions)
		}

		// 证明/元数据上传（配置了存储网关才开放）
		if store != nil {
			blobHandler := handler.NewBlobHandler(store)
			v1.POST("/blobs", blobHandler.Upload)
		}
	}

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
