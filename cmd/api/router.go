package api

import (
	"net/http"

	accountdelivery "github.com/ladoyle/simple-mail-bot/internal/account/delivery"
	accountUsecase "github.com/ladoyle/simple-mail-bot/internal/account/usecase"
	labeldelivery "github.com/ladoyle/simple-mail-bot/internal/label/delivery"
	ruledelivery "github.com/ladoyle/simple-mail-bot/internal/rule/delivery"
	statsdelivery "github.com/ladoyle/simple-mail-bot/internal/stats/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, oauthUsecase accountUsecase.OAuthUsecase, oauthHandler *accountdelivery.OAuthHandler, ruleHandler *ruledelivery.RuleHandler, labelHandler *labeldelivery.LabelHandler, statsHandler *statsdelivery.StatsHandler) {
	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// OAuth routes
		oauth := api.Group("/oauth")
		{
			oauth.POST("/login", oauthHandler.Login)
			oauth.GET("/callback", oauthHandler.Callback)
			oauth.POST("/logout", accountdelivery.AuthMiddleware(oauthUsecase), oauthHandler.Logout)
		}

		// Label routes (protected)
		labels := api.Group("/labels")
		labels.Use(accountdelivery.AuthMiddleware(oauthUsecase))
		{
			labels.GET("", labelHandler.ListLabels)
			labels.POST("", labelHandler.CreateLabel)
			labels.DELETE("/:id", labelHandler.DeleteLabel)
		}

		// Rule routes (protected)
		rules := api.Group("/rules")
		rules.Use(accountdelivery.AuthMiddleware(oauthUsecase))
		{
			rules.GET("", ruleHandler.ListRules)
			rules.POST("", ruleHandler.CreateRule)
			rules.DELETE("/:id", ruleHandler.DeleteRule)
		}

		// Stats routes (protected)
		stats := api.Group("/stats")
		stats.Use(accountdelivery.AuthMiddleware(oauthUsecase))
		{
			stats.GET("/total_processed", statsHandler.TotalProcessed)
			stats.GET("/daily_processed", statsHandler.DailyProcessed)
			stats.GET("/weekly_processed", statsHandler.WeeklyProcessed)
			stats.GET("/monthly_processed", statsHandler.MonthlyProcessed)
			stats.GET("/unread", statsHandler.UnreadCount)
			stats.GET("/read", statsHandler.ReadCount)
		}
	}
}
