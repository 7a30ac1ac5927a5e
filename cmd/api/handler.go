package api

import (
	accountdelivery "github.com/ladoyle/simple-mail-bot/internal/account/delivery"
	accountUsecase "github.com/ladoyle/simple-mail-bot/internal/account/usecase"
	labeldelivery "github.com/ladoyle/simple-mail-bot/internal/label/delivery"
	labelUsecase "github.com/ladoyle/simple-mail-bot/internal/label/usecase"
	ruledelivery "github.com/ladoyle/simple-mail-bot/internal/rule/delivery"
	ruleUsecase "github.com/ladoyle/simple-mail-bot/internal/rule/usecase"
	statsdelivery "github.com/ladoyle/simple-mail-bot/internal/stats/delivery"
	statsUsecase "github.com/ladoyle/simple-mail-bot/internal/stats/usecase"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	oauthUsecase accountUsecase.OAuthUsecase
	oauthHandler *accountdelivery.OAuthHandler
	ruleHandler  *ruledelivery.RuleHandler
	labelHandler *labeldelivery.LabelHandler
	statsHandler *statsdelivery.StatsHandler
}

func NewHandler(oauthUc accountUsecase.OAuthUsecase, ruleUc ruleUsecase.RuleUsecase, labelUc labelUsecase.LabelUsecase, statsUc statsUsecase.StatsUsecase) *Handler {
	return &Handler{
		oauthUsecase: oauthUc,
		oauthHandler: accountdelivery.NewOAuthHandler(oauthUc),
		ruleHandler:  ruledelivery.NewRuleHandler(ruleUc),
		labelHandler: labeldelivery.NewLabelHandler(labelUc),
		statsHandler: statsdelivery.NewStatsHandler(statsUc),
	}
}

func (h *Handler) Start(addr string) error {
	r := gin.Default()
	gin.SetMode(gin.ReleaseMode)

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Setup routes
	SetupRoutes(r, h.oauthUsecase, h.oauthHandler, h.ruleHandler, h.labelHandler, h.statsHandler)

	return r.Run(addr)
}
