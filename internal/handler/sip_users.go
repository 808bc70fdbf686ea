package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/voxkit/voxconsole/internal/models"
	"github.com/voxkit/voxconsole/pkg/response"
	"github.com/voxkit/voxconsole/pkg/utils"
)

type createSipUserRequest struct {
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
	Domain      string `json:"domain"`
	Notes       string `json:"notes"`
}

type updateSipUserRequest struct {
	Password    *string `json:"password"`
	DisplayName *string `json:"displayName"`
	Domain      *string `json:"domain"`
	Enabled     *bool   `json:"enabled"`
	Notes       *string `json:"notes"`
}

func (h *Handlers) handleListSipUsers(c *gin.Context) {
	tenant, ok := h.tenantForRead(c)
	if !ok {
		return
	}
	onlyEnabled := c.Query("enabled") == "true"
	sipUsers, err := models.ListSipUsersByTenant(h.db, tenant.ID, onlyEnabled, 0)
	if err != nil {
		logrus.WithError(err).Error("list sip users failed")
		response.Fail(c, "list sip users failed", nil)
		return
	}
	response.Success(c, "ok", sipUsers)
}

func (h *Handlers) handleCreateSipUser(c *gin.Context) {
	tenant, ok := h.tenantForManage(c)
	if !ok {
		return
	}

	var req createSipUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "invalid request", err.Error())
		return
	}

	if _, err := models.GetSipUserByUsername(h.db, tenant.ID, req.Username); err == nil {
		response.Fail(c, "username already exists", nil)
		return
	}

	domain := req.Domain
	if domain == "" {
		domain = tenant.SipDomain
	}
	password := req.Password
	if password == "" {
		password = utils.RandText(16)
	}

	sipUser := &models.SipUser{
		TenantID:    tenant.ID,
		Username:    req.Username,
		Password:    password,
		DisplayName: req.DisplayName,
		Domain:      domain,
		Notes:       req.Notes,
		Status:      models.SipUserStatusUnregistered,
		Enabled:     true,
	}
	if err := models.CreateSipUser(h.db, sipUser); err != nil {
		logrus.WithError(err).Error("create sip user failed")
		response.Fail(c, "create sip user failed", nil)
		return
	}
	response.Success(c, "ok", sipUser)
}

// sipUserForTenant resolves :sipUserId and verifies it belongs to the tenant.
func (h *Handlers) sipUserForTenant(c *gin.Context, tenant *models.Tenant) (*models.SipUser, bool) {
	id, ok := paramUint(c, "sipUserId")
	if !ok {
		return nil, false
	}
	sipUser, err := models.GetSipUserByID(h.db, id)
	if err != nil || sipUser.TenantID != tenant.ID {
		response.FailWithStatus(c, http.StatusNotFound, "sip user not found", nil)
		return nil, false
	}
	return sipUser, true
}

func (h *Handlers) handleGetSipUser(c *gin.Context) {
	tenant, ok := h.tenantForRead(c)
	if !ok {
		return
	}
	sipUser, ok := h.sipUserForTenant(c, tenant)
	if !ok {
		return
	}
	response.Success(c, "ok", sipUser)
}

func (h *Handlers) handleUpdateSipUser(c *gin.Context) {
	tenant, ok := h.tenantForManage(c)
	if !ok {
		return
	}
	sipUser, ok := h.sipUserForTenant(c, tenant)
	if !ok {
		return
	}

	var req updateSipUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "invalid request", err.Error())
		return
	}

	updates := map[string]any{}
	if req.Password != nil {
		updates["password"] = *req.Password
	}
	if req.DisplayName != nil {
		updates["display_name"] = *req.DisplayName
	}
	if req.Domain != nil {
		updates["domain"] = *req.Domain
	}
	if req.Enabled != nil {
		updates["enabled"] = *req.Enabled
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if len(updates) > 0 {
		if err := h.db.Model(sipUser).Updates(updates).Error; err != nil {
			logrus.WithError(err).Error("update sip user failed")
			response.Fail(c, "update sip user failed", nil)
			return
		}
	}
	response.Success(c, "ok", sipUser)
}

func (h *Handlers) handleDeleteSipUser(c *gin.Context) {
	tenant, ok := h.tenantForManage(c)
	if !ok {
		return
	}
	sipUser, ok := h.sipUserForTenant(c, tenant)
	if !ok {
		return
	}
	if err := models.DeleteSipUser(h.db, sipUser.ID); err != nil {
		logrus.WithError(err).Error("delete sip user failed")
		response.Fail(c, "delete sip user failed", nil)
		return
	}
	response.Success(c, "ok", nil)
}
