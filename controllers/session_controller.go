package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"shop-backend/models"
	"shop-backend/repositories"
	"shop-backend/services"
)

type SessionController struct {
	auth *services.AuthService
}

func NewSessionController(auth *services.AuthService) *SessionController {
	return &SessionController{auth: auth}
}

// @Summary Register
// @Description Creates a user with an owned cart and returns a JWT
// @Tags Sessions
// @Accept json
// @Produce json
// @Param user body models.RegisterRequest true "User fields"
// @Success 201 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Router /api/sessions/register [post]
func (ctrl *SessionController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Status: "error",
			Error:  "all fields are required: first_name, last_name, email, age, password",
		})
		return
	}

	user, token, err := ctrl.auth.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Status: "error", Error: "email already registered"})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.Response{
		Status:  "success",
		Message: "user registered",
		Payload: models.SessionPayload{User: *user, Token: token},
	})
}

// @Summary Login
// @Tags Sessions
// @Accept json
// @Produce json
// @Param credentials body models.LoginRequest true "Credentials"
// @Success 200 {object} models.Response
// @Failure 401 {object} models.ErrorResponse
// @Router /api/sessions/login [post]
func (ctrl *SessionController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Status: "error", Error: "email and password are required"})
		return
	}

	user, token, err := ctrl.auth.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{Status: "error", Error: err.Error()})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Status:  "success",
		Message: "login successful",
		Payload: models.SessionPayload{User: *user, Token: token},
	})
}

// @Summary Current user
// @Description Resolves the user behind the presented token
// @Tags Sessions
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Failure 401 {object} models.ErrorResponse
// @Router /api/sessions/current [get]
func (ctrl *SessionController) Current(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Status: "error", Error: "not authenticated"})
		return
	}

	user, err := ctrl.auth.Current(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{Status: "error", Error: "user no longer exists"})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Status:  "success",
		Payload: models.SessionPayload{User: *user},
	})
}
