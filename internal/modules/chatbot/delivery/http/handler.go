package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"nub.ac.bd/transport/internal/modules/chatbot/dto"
	chatbot "nub.ac.bd/transport/internal/modules/chatbot/service"
	"nub.ac.bd/transport/pkg/response"
	"nub.ac.bd/transport/pkg/validator"
)

type ChatbotHandler struct {
	service chatbot.ChatbotService
}

func NewChatbotHandler(service chatbot.ChatbotService) *ChatbotHandler {
	return &ChatbotHandler{service: service}
}

func (h *ChatbotHandler) Chat(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.BindError(err))
		return
	}

	history, err := h.service.Chat(c.Request.Context(), userID, req.Prompt)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Data(c, http.StatusOK, history)
}

func (h *ChatbotHandler) GetHistory(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	history, err := h.service.History(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Data(c, http.StatusOK, history)
}

func (h *ChatbotHandler) ClearHistory(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	history, err := h.service.Clear(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Data(c, http.StatusOK, history)
}
