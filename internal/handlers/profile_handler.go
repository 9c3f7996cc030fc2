package handlers

import (
	"net/http"

	"dts_backend/internal/middleware"
	"dts_backend/internal/models"
	"dts_backend/internal/services"
	"dts_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	*BaseHandler
	profileService services.ProfileService
}

func NewProfileHandler(base *BaseHandler, profileService services.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler:    base,
		profileService: profileService,
	}
}

// RegisterRoutes регистрирует маршруты анкет
func (h *ProfileHandler) RegisterRoutes(rg *gin.RouterGroup) {
	profile := rg.Group("/profile")
	profile.Use(middleware.AuthMiddleware())
	{
		profile.GET("/me", h.GetMyProfile)
		profile.PATCH("/me", h.UpdateMyProfile)
	}

	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.RequireRoles(models.UserRoleAdmin))
	{
		admin.GET("/users/:id/profile", h.GetUserProfile)
		admin.POST("/instructors", h.CreateInstructorProfile)
		admin.POST("/learners", h.CreateLearnerProfile)
	}
}

func (h *ProfileHandler) GetMyProfile(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	profile, err := h.profileService.GetProfile(userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) UpdateMyProfile(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	profile, err := h.profileService.UpdateProfile(userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) GetUserProfile(c *gin.Context) {
	profile, err := h.profileService.GetProfile(c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) CreateInstructorProfile(c *gin.Context) {
	var req dto.CreateInstructorProfileRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.profileService.CreateInstructorProfile(&req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Instructor profile created"})
}

func (h *ProfileHandler) CreateLearnerProfile(c *gin.Context) {
	var req dto.CreateLearnerProfileRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.profileService.CreateLearnerProfile(&req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Learner profile created"})
}
