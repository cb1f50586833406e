package routes

import (
	"net/http"

	"university-results-backend/app/model"
	"university-results-backend/app/service"
	"university-results-backend/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler serves registration and login.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler instance.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// SetupAuthRoutes registers the authentication endpoints.
func (h *AuthHandler) SetupAuthRoutes(r *gin.Engine) {
	authGroup := r.Group("/api/v1/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
	}
}

// Register creates a new user account.
func (h *AuthHandler) Register(ctx *gin.Context) {
	var input struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
		FullName string `json:"fullName" binding:"required"`
		Role     string `json:"role" binding:"required,rolename"`
	}

	if err := ctx.ShouldBindJSON(&input); err != nil {
		ctx.JSON(http.StatusBadRequest, utils.BuildResponseFailed("Invalid input", err.Error(), nil))
		return
	}

	newUser := model.User{
		Username: input.Username,
		Email:    input.Email,
		FullName: input.FullName,
		Role:     model.Role(input.Role),
		IsActive: true,
	}

	if err := h.authService.Register(&newUser, input.Password); err != nil {
		respondError(ctx, "Registration failed", err)
		return
	}

	ctx.JSON(http.StatusCreated, utils.BuildResponseSuccess("Registration successful", nil))
}

// Login checks credentials and hands out a JWT.
func (h *AuthHandler) Login(ctx *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := ctx.ShouldBindJSON(&input); err != nil {
		ctx.JSON(http.StatusBadRequest, utils.BuildResponseFailed("Invalid login input", err.Error(), nil))
		return
	}

	user, err := h.authService.Login(input.Email, input.Password)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, utils.BuildResponseFailed("Login failed", err.Error(), nil))
		return
	}

	token, err := utils.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, utils.BuildResponseFailed("Failed to create token", err.Error(), nil))
		return
	}

	data := map[string]interface{}{
		"token": token,
		"user": map[string]interface{}{
			"id":       user.ID,
			"username": user.Username,
			"fullName": user.FullName,
			"role":     user.Role,
		},
	}

	ctx.JSON(http.StatusOK, utils.BuildResponseSuccess("Login successful", data))
}
