package delivery

import (
	"errors"
	"net/http"

	labeldto "github.com/ladoyle/simple-mail-bot/internal/label/dto"
	"github.com/ladoyle/simple-mail-bot/internal/label/usecase"

	"github.com/gin-gonic/gin"
)

type LabelHandler struct {
	labelUsecase usecase.LabelUsecase
}

func NewLabelHandler(labelUsecase usecase.LabelUsecase) *LabelHandler {
	return &LabelHandler{
		labelUsecase: labelUsecase,
	}
}

func (h *LabelHandler) ListLabels(c *gin.Context) {
	labels, err := h.labelUsecase.List(c.Request.Context(), c.GetString("accountEmail"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"labels": labels})
}

func (h *LabelHandler) CreateLabel(c *gin.Context) {
	var req labeldto.CreateLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	label, err := h.labelUsecase.Create(c.Request.Context(), c.GetString("accountEmail"), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Label created",
		"label_id": label.ID,
	})
}

func (h *LabelHandler) DeleteLabel(c *gin.Context) {
	id := c.Param("id")
	err := h.labelUsecase.Delete(c.Request.Context(), c.GetString("accountEmail"), id)
	if err != nil {
		if errors.Is(err, usecase.ErrLabelNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "label not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Label deleted", "label_id": id})
}
