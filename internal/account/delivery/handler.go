package delivery

import (
	"net/http"

	accountdto "github.com/ladoyle/simple-mail-bot/internal/account/dto"
	"github.com/ladoyle/simple-mail-bot/internal/account/usecase"

	"github.com/gin-gonic/gin"
)

type OAuthHandler struct {
	oauthUsecase usecase.OAuthUsecase
}

func NewOAuthHandler(oauthUsecase usecase.OAuthUsecase) *OAuthHandler {
	return &OAuthHandler{
		oauthUsecase: oauthUsecase,
	}
}

func (h *OAuthHandler) Login(c *gin.Context) {
	c.JSON(http.StatusOK, h.oauthUsecase.LoginURL())
}

func (h *OAuthHandler) Callback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing code"})
		return
	}

	resp, err := h.oauthUsecase.HandleCallback(c.Request.Context(), code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *OAuthHandler) Logout(c *gin.Context) {
	var req accountdto.LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no email provided"})
		return
	}

	if err := h.oauthUsecase.Logout(c.Request.Context(), req.Email); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Successfully logged out user " + req.Email,
		"status":  "success",
	})
}
