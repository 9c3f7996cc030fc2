package handlers

import (
	"net/http"

	"dts_backend/internal/middleware"
	"dts_backend/internal/services"
	"dts_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type RecoveryHandler struct {
	*BaseHandler
	recoveryService services.RecoveryService
}

func NewRecoveryHandler(base *BaseHandler, recoveryService services.RecoveryService) *RecoveryHandler {
	return &RecoveryHandler{
		BaseHandler:     base,
		recoveryService: recoveryService,
	}
}

// RegisterRoutes регистрирует маршруты восстановления пароля
func (h *RecoveryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	recovery := rg.Group("/recovery")
	{
		recovery.POST("/start", h.StartRecovery)
		recovery.POST("/verify", h.VerifyAnswers)
		recovery.POST("/reset", h.ResetPassword)
	}

	questions := rg.Group("/security-questions")
	{
		questions.GET("", h.ListQuestions)
	}

	authorized := rg.Group("/security-questions")
	authorized.Use(middleware.AuthMiddleware())
	{
		authorized.POST("/answers", h.RegisterAnswer)
	}
}

func (h *RecoveryHandler) StartRecovery(c *gin.Context) {
	var req dto.StartRecoveryRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	response, err := h.recoveryService.StartRecovery(c.Request.Context(), req.Username)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *RecoveryHandler) VerifyAnswers(c *gin.Context) {
	var req dto.VerifyAnswersRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	response, err := h.recoveryService.VerifyAnswers(c.Request.Context(), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *RecoveryHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.recoveryService.ResetPassword(c.Request.Context(), &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset"})
}

func (h *RecoveryHandler) ListQuestions(c *gin.Context) {
	questions, err := h.recoveryService.ListQuestions()
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, questions)
}

func (h *RecoveryHandler) RegisterAnswer(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.RegisterAnswerRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.recoveryService.RegisterAnswer(userID, &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Security answer registered"})
}
