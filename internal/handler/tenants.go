package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/voxkit/voxconsole/internal/models"
	"github.com/voxkit/voxconsole/pkg/response"
)

type createTenantRequest struct {
	Name      string `json:"name" binding:"required"`
	Slug      string `json:"slug" binding:"required,alphanum"`
	SipDomain string `json:"sipDomain"`
	Notes     string `json:"notes"`
}

type updateTenantRequest struct {
	Name      *string `json:"name"`
	SipDomain *string `json:"sipDomain"`
	Enabled   *bool   `json:"enabled"`
	Notes     *string `json:"notes"`
}

type inviteRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role"`
}

func paramUint(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		response.Fail(c, "invalid "+name, nil)
		return 0, false
	}
	return uint(v), true
}

// tenantForRead resolves the :id param and checks read access.
func (h *Handlers) tenantForRead(c *gin.Context) (*models.Tenant, bool) {
	id, ok := paramUint(c, "id")
	if !ok {
		return nil, false
	}
	tenant, err := models.GetTenantByID(h.db, id)
	if err != nil {
		response.FailWithStatus(c, http.StatusNotFound, "tenant not found", nil)
		return nil, false
	}
	if apiTenant := models.CurrentAPITenant(c); apiTenant != nil {
		if apiTenant.ID == tenant.ID {
			return tenant, true
		}
		response.FailWithStatus(c, http.StatusForbidden, "no access to tenant", nil)
		return nil, false
	}
	user := models.CurrentUser(c)
	if user == nil || !models.CanAccessTenant(h.db, user, tenant.ID) {
		response.FailWithStatus(c, http.StatusForbidden, "no access to tenant", nil)
		return nil, false
	}
	return tenant, true
}

// tenantForManage additionally requires owner/admin role. An API key manages
// its own tenant.
func (h *Handlers) tenantForManage(c *gin.Context) (*models.Tenant, bool) {
	tenant, ok := h.tenantForRead(c)
	if !ok {
		return nil, false
	}
	if models.CurrentAPITenant(c) != nil {
		return tenant, true
	}
	user := models.CurrentUser(c)
	if !models.CanManageTenant(h.db, user, tenant.ID) {
		response.FailWithStatus(c, http.StatusForbidden, "no manage permission", nil)
		return nil, false
	}
	return tenant, true
}

func (h *Handlers) handleListTenants(c *gin.Context) {
	user := models.CurrentUser(c)
	tenants, err := models.ListTenantsForUser(h.db, user)
	if err != nil {
		logrus.WithError(err).Error("list tenants failed")
		response.Fail(c, "list tenants failed", nil)
		return
	}
	response.Success(c, "ok", tenants)
}

func (h *Handlers) handleCreateTenant(c *gin.Context) {
	var req createTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "invalid request", err.Error())
		return
	}

	if _, err := models.GetTenantBySlug(h.db, req.Slug); err == nil {
		response.Fail(c, "slug already in use", nil)
		return
	}

	user := models.CurrentUser(c)
	tenant := &models.Tenant{
		Name:      req.Name,
		Slug:      req.Slug,
		SipDomain: req.SipDomain,
		Notes:     req.Notes,
		APIKey:    uuid.NewString(),
		Enabled:   true,
		CreatorID: user.ID,
	}
	if err := models.CreateTenant(h.db, tenant); err != nil {
		logrus.WithError(err).Error("create tenant failed")
		response.Fail(c, "create tenant failed", nil)
		return
	}

	member := &models.TenantMember{TenantID: tenant.ID, UserID: user.ID, Role: models.TenantRoleOwner}
	if err := h.db.Create(member).Error; err != nil {
		logrus.WithError(err).Error("create owner membership failed")
	}
	response.Success(c, "ok", tenant)
}

func (h *Handlers) handleGetTenant(c *gin.Context) {
	tenant, ok := h.tenantForRead(c)
	if !ok {
		return
	}
	response.Success(c, "ok", tenant)
}

func (h *Handlers) handleUpdateTenant(c *gin.Context) {
	tenant, ok := h.tenantForManage(c)
	if !ok {
		return
	}

	var req updateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "invalid request", err.Error())
		return
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.SipDomain != nil {
		updates["sip_domain"] = *req.SipDomain
	}
	if req.Enabled != nil {
		updates["enabled"] = *req.Enabled
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if len(updates) == 0 {
		response.Success(c, "ok", tenant)
		return
	}

	if err := h.db.Model(tenant).Updates(updates).Error; err != nil {
		logrus.WithError(err).Error("update tenant failed")
		response.Fail(c, "update tenant failed", nil)
		return
	}
	response.Success(c, "ok", tenant)
}

func (h *Handlers) handleDeleteTenant(c *gin.Context) {
	tenant, ok := h.tenantForManage(c)
	if !ok {
		return
	}
	user := models.CurrentUser(c)
	if !user.IsSuperUser {
		member, err := models.GetTenantMember(h.db, tenant.ID, user.ID)
		if err != nil || member.Role != models.TenantRoleOwner {
			response.FailWithStatus(c, http.StatusForbidden, "only the owner can delete a tenant", nil)
			return
		}
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ?", tenant.ID).Delete(&models.TenantMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tenant_id = ?", tenant.ID).Delete(&models.TenantInvitation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tenant_id = ?", tenant.ID).Delete(&models.SipUser{}).Error; err != nil {
			return err
		}
		return tx.Delete(tenant).Error
	}); err != nil {
		logrus.WithError(err).Error("delete tenant failed")
		response.Fail(c, "delete tenant failed", nil)
		return
	}
	response.Success(c, "ok", nil)
}

func (h *Handlers) handleListTenantMembers(c *gin.Context) {
	tenant, ok := h.tenantForRead(c)
	if !ok {
		return
	}
	var members []models.TenantMember
	if err := h.db.Preload("User").Where("tenant_id = ?", tenant.ID).Find(&members).Error; err != nil {
		logrus.WithError(err).Error("list members failed")
		response.Fail(c, "list members failed", nil)
		return
	}
	response.Success(c, "ok", members)
}

func (h *Handlers) handleCreateInvitation(c *gin.Context) {
	tenant, ok := h.tenantForManage(c)
	if !ok {
		return
	}

	var req inviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "invalid request", err.Error())
		return
	}
	role := req.Role
	if role == "" {
		role = models.TenantRoleMember
	}
	if role != models.TenantRoleAdmin && role != models.TenantRoleMember {
		response.Fail(c, "invalid role", nil)
		return
	}

	invitee, err := models.GetUserByEmail(h.db, req.Email)
	if err != nil {
		response.FailWithStatus(c, http.StatusNotFound, "no account with that email", nil)
		return
	}
	if _, err := models.GetTenantMember(h.db, tenant.ID, invitee.ID); err == nil {
		response.Fail(c, "already a member", nil)
		return
	}

	expires := time.Now().AddDate(0, 0, 7)
	invitation := &models.TenantInvitation{
		TenantID:  tenant.ID,
		InviterID: models.CurrentUser(c).ID,
		InviteeID: invitee.ID,
		Role:      role,
		Status:    "pending",
		ExpiresAt: &expires,
	}
	if err := h.db.Create(invitation).Error; err != nil {
		logrus.WithError(err).Error("create invitation failed")
		response.Fail(c, "create invitation failed", nil)
		return
	}
	response.Success(c, "ok", invitation)
}

func (h *Handlers) handleAcceptInvitation(c *gin.Context) {
	invitationID, ok := paramUint(c, "invitationId")
	if !ok {
		return
	}

	var invitation models.TenantInvitation
	if err := h.db.First(&invitation, invitationID).Error; err != nil {
		response.FailWithStatus(c, http.StatusNotFound, "invitation not found", nil)
		return
	}

	user := models.CurrentUser(c)
	if invitation.InviteeID != user.ID {
		response.FailWithStatus(c, http.StatusForbidden, "invitation belongs to another user", nil)
		return
	}
	if invitation.Status != "pending" {
		response.Fail(c, "invitation already resolved", nil)
		return
	}
	if invitation.ExpiresAt != nil && invitation.ExpiresAt.Before(time.Now()) {
		h.db.Model(&invitation).Update("status", "rejected")
		response.Fail(c, "invitation expired", nil)
		return
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		member := &models.TenantMember{TenantID: invitation.TenantID, UserID: user.ID, Role: invitation.Role}
		if err := tx.Create(member).Error; err != nil {
			return err
		}
		return tx.Model(&invitation).Update("status", "accepted").Error
	}); err != nil {
		logrus.WithError(err).Error("accept invitation failed")
		response.Fail(c, "accept invitation failed", nil)
		return
	}
	response.Success(c, "ok", nil)
}

func (h *Handlers) handleRejectInvitation(c *gin.Context) {
	invitationID, ok := paramUint(c, "invitationId")
	if !ok {
		return
	}

	var invitation models.TenantInvitation
	if err := h.db.First(&invitation, invitationID).Error; err != nil {
		response.FailWithStatus(c, http.StatusNotFound, "invitation not found", nil)
		return
	}

	user := models.CurrentUser(c)
	if invitation.InviteeID != user.ID {
		response.FailWithStatus(c, http.StatusForbidden, "invitation belongs to another user", nil)
		return
	}
	if invitation.Status != "pending" {
		response.Fail(c, "invitation already resolved", nil)
		return
	}

	if err := h.db.Model(&invitation).Update("status", "rejected").Error; err != nil {
		logrus.WithError(err).Error("reject invitation failed")
		response.Fail(c, "reject invitation failed", nil)
		return
	}
	response.Success(c, "ok", nil)
}

func (h *Handlers) handleRemoveTenantMember(c *gin.Context) {
	tenant, ok := h.tenantForManage(c)
	if !ok {
		return
	}
	userID, ok := paramUint(c, "userId")
	if !ok {
		return
	}

	member, err := models.GetTenantMember(h.db, tenant.ID, userID)
	if err != nil {
		response.FailWithStatus(c, http.StatusNotFound, "member not found", nil)
		return
	}
	if member.Role == models.TenantRoleOwner {
		response.Fail(c, "cannot remove the owner", nil)
		return
	}

	if err := h.db.Delete(member).Error; err != nil {
		logrus.WithError(err).Error("remove member failed")
		response.Fail(c, "remove member failed", nil)
		return
	}
	response.Success(c, "ok", nil)
}
