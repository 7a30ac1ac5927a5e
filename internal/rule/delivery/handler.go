package delivery

import (
	"errors"
	"net/http"

	ruledomain "github.com/ladoyle/simple-mail-bot/internal/rule/domain"
	ruledto "github.com/ladoyle/simple-mail-bot/internal/rule/dto"
	"github.com/ladoyle/simple-mail-bot/internal/rule/usecase"

	"github.com/gin-gonic/gin"
)

type RuleHandler struct {
	ruleUsecase usecase.RuleUsecase
}

func NewRuleHandler(ruleUsecase usecase.RuleUsecase) *RuleHandler {
	return &RuleHandler{
		ruleUsecase: ruleUsecase,
	}
}

func (h *RuleHandler) CreateRule(c *gin.Context) {
	var req ruledto.CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rule, err := h.ruleUsecase.Create(c.Request.Context(), c.GetString("accountEmail"), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Rule " + rule.Name + " created successfully",
		"rule_id": rule.ID,
	})
}

func (h *RuleHandler) ListRules(c *gin.Context) {
	rules, err := h.ruleUsecase.List(c.GetString("accountEmail"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]ruledto.RuleResponse, 0, len(rules))
	for i := range rules {
		resp = append(resp, toRuleResponse(&rules[i]))
	}
	c.JSON(http.StatusOK, gin.H{"rules": resp})
}

func (h *RuleHandler) DeleteRule(c *gin.Context) {
	id := c.Param("id")
	err := h.ruleUsecase.Delete(c.Request.Context(), c.GetString("accountEmail"), id)
	if err != nil {
		if errors.Is(err, usecase.ErrRuleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "rule not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Rule deleted", "rule_id": id})
}

func toRuleResponse(rule *ruledomain.Rule) ruledto.RuleResponse {
	// Decoding errors surface as empty lists here; the engine logs and
	// skips such rules during aggregation.
	addIDs, _ := rule.AddLabels()
	removeIDs, _ := rule.RemoveLabels()
	return ruledto.RuleResponse{
		ID:             rule.ID,
		GmailFilterID:  rule.GmailFilterID,
		Name:           rule.Name,
		Criteria:       rule.Criteria,
		AddLabelIDs:    addIDs,
		RemoveLabelIDs: removeIDs,
		Forward:        rule.Forward,
	}
}
