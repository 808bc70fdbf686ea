package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/voxkit/voxconsole/internal/models"
	"github.com/voxkit/voxconsole/pkg/response"
)

type signupRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	DisplayName string `json:"displayName"`
	Timezone    string `json:"timezone"`
}

type signinRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

func (h *Handlers) handleUserSignup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "invalid request", err.Error())
		return
	}

	if _, err := models.GetUserByEmail(h.db, req.Email); err == nil {
		response.Fail(c, "email already registered", nil)
		return
	}

	user := &models.User{
		Email:       req.Email,
		Password:    models.HashPassword(req.Password),
		DisplayName: req.DisplayName,
		Timezone:    req.Timezone,
		Enabled:     true,
	}
	if err := h.db.Create(user).Error; err != nil {
		logrus.WithError(err).Error("create user failed")
		response.Fail(c, "signup failed", nil)
		return
	}

	if err := models.Login(c, user); err != nil {
		logrus.WithError(err).Error("login after signup failed")
	}
	response.Success(c, "ok", user)
}

func (h *Handlers) handleUserSignin(c *gin.Context) {
	var req signinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "invalid request", err.Error())
		return
	}

	user, err := models.GetUserByEmail(h.db, req.Email)
	if err != nil || !models.CheckPassword(user, req.Password) {
		response.FailWithStatus(c, http.StatusUnauthorized, "invalid email or password", nil)
		return
	}
	if !user.Enabled {
		response.FailWithStatus(c, http.StatusForbidden, "account disabled", nil)
		return
	}

	if err := models.Login(c, user); err != nil {
		logrus.WithError(err).Error("session save failed")
		response.Fail(c, "login failed", nil)
		return
	}
	response.Success(c, "ok", user)
}

func (h *Handlers) handleUserLogout(c *gin.Context) {
	h.dropLogSession(c)
	models.Logout(c)
	response.Success(c, "ok", nil)
}

func (h *Handlers) handleUserInfo(c *gin.Context) {
	user := models.CurrentUser(c)
	tenants, err := models.ListTenantsForUser(h.db, user)
	if err != nil {
		logrus.WithError(err).Error("list tenants failed")
	}
	response.Success(c, "ok", gin.H{
		"user":    user,
		"tenants": tenants,
	})
}

func (h *Handlers) handleChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "invalid request", err.Error())
		return
	}

	user := models.CurrentUser(c)
	if !models.CheckPassword(user, req.OldPassword) {
		response.FailWithStatus(c, http.StatusForbidden, "old password does not match", nil)
		return
	}
	if err := models.SetPassword(h.db, user, req.NewPassword); err != nil {
		logrus.WithError(err).Error("set password failed")
		response.Fail(c, "password change failed", nil)
		return
	}
	response.Success(c, "ok", nil)
}
