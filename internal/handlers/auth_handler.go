package handlers

import (
	"net/http"

	"github.com/rodamidia/roda-campaign-services-backend/internal/apperr"
	"github.com/rodamidia/roda-campaign-services-backend/internal/models"
	"github.com/rodamidia/roda-campaign-services-backend/internal/services/auth"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService *auth.AuthService
}

func NewAuthHandler(authService *auth.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// DriverLogin godoc
// @Summary Driver login
// @Description Resolve loosely-specified identity fragments into one driver and issue a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.DriverLoginRequest true "Identity fragments"
// @Success 200 {object} models.DriverLoginResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/auth/driver/login [post]
func (h *AuthHandler) DriverLogin(c *gin.Context) {
	var req models.DriverLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	response, err := h.authService.DriverLogin(&req)
	if err != nil {
		if apperr.IsNotFound(err) {
			// Generic by design: never reveal which field mismatched.
			c.JSON(http.StatusNotFound, gin.H{"error": "Driver not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in"})
		return
	}

	c.JSON(http.StatusOK, response)
}

// GraphicLogin godoc
// @Summary Graphic login
// @Description Authenticate an installation partner by campaign code and responsible name
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.GraphicLoginRequest true "Graphic login request"
// @Success 200 {object} models.GraphicLoginResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/auth/graphic/login [post]
func (h *AuthHandler) GraphicLogin(c *gin.Context) {
	var req models.GraphicLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	response, err := h.authService.GraphicLogin(&req)
	if err != nil {
		if apperr.IsNotFound(err) {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in"})
		return
	}

	c.JSON(http.StatusOK, response)
}

// AdminLogin godoc
// @Summary Admin login
// @Description Authenticate a reviewer account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.AdminLoginRequest true "Admin credentials"
// @Success 200 {object} models.AdminLoginResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /api/v1/auth/admin/login [post]
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req models.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	response, err := h.authService.AdminLogin(&req)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	c.JSON(http.StatusOK, response)
}
