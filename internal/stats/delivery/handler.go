package delivery

import (
	"net/http"

	"github.com/ladoyle/simple-mail-bot/internal/stats/usecase"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	statsUsecase usecase.StatsUsecase
}

func NewStatsHandler(statsUsecase usecase.StatsUsecase) *StatsHandler {
	return &StatsHandler{
		statsUsecase: statsUsecase,
	}
}

// processed serves the four processed-count endpoints. rule_id is optional;
// absent means all rules of the account.
func (h *StatsHandler) processed(c *gin.Context, window string, sum func(email, ruleID string) (int64, error)) {
	count, err := sum(c.GetString("accountEmail"), c.Query("rule_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"window": window, "processed": count})
}

func (h *StatsHandler) TotalProcessed(c *gin.Context) {
	h.processed(c, "total", h.statsUsecase.TotalProcessed)
}

func (h *StatsHandler) DailyProcessed(c *gin.Context) {
	h.processed(c, "daily", h.statsUsecase.DailyProcessed)
}

func (h *StatsHandler) WeeklyProcessed(c *gin.Context) {
	h.processed(c, "weekly", h.statsUsecase.WeeklyProcessed)
}

func (h *StatsHandler) MonthlyProcessed(c *gin.Context) {
	h.processed(c, "monthly", h.statsUsecase.MonthlyProcessed)
}

func (h *StatsHandler) UnreadCount(c *gin.Context) {
	count, err := h.statsUsecase.UnreadCount(c.Request.Context(), c.GetString("accountEmail"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": count})
}

func (h *StatsHandler) ReadCount(c *gin.Context) {
	count, err := h.statsUsecase.ReadCount(c.Request.Context(), c.GetString("accountEmail"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"read": count})
}
