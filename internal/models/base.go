package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	TenantRoleOwner  = "owner"
	TenantRoleAdmin  = "admin"
	TenantRoleMember = "member"
)

// User is a console account: either a super-tenant administrator or a tenant owner.
type User struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time  `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time  `json:"-" gorm:"autoUpdateTime"`
	DeletedAt *time.Time `json:"-" gorm:"index"`

	Email       string     `json:"email" gorm:"size:128;uniqueIndex"`
	Password    string     `json:"-" gorm:"size:128"`
	DisplayName string     `json:"displayName,omitempty" gorm:"size:128"`
	IsSuperUser bool       `json:"-"`
	Enabled     bool       `json:"-"`
	LastLogin   *time.Time `json:"lastLogin,omitempty"`
	LastLoginIP string     `json:"-" gorm:"size:128"`
	Timezone    string     `json:"timezone,omitempty" gorm:"size:200"`
}

// Tenant is an isolated customer account owning its own users and PBX configuration.
type Tenant struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`

	Name      string `json:"name" gorm:"size:200"`
	Slug      string `json:"slug" gorm:"size:64;uniqueIndex"` // scoping key sent to the log backend
	APIKey    string `json:"apiKey,omitempty" gorm:"size:64;index"`
	SipDomain string `json:"sipDomain,omitempty" gorm:"size:256"`
	Enabled   bool   `json:"enabled"`
	Notes     string `json:"notes,omitempty" gorm:"type:text"`

	CreatorID uint `json:"creatorId" gorm:"index"`
	Creator   User `json:"creator,omitempty" gorm:"foreignKey:CreatorID"`
}

// TenantMember links a console user to a tenant with a role.
type TenantMember struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UserID    uint      `json:"userId" gorm:"index"`
	User      User      `json:"user" gorm:"foreignKey:UserID"`
	TenantID  uint      `json:"tenantId" gorm:"index"`
	Tenant    Tenant    `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
	Role      string    `json:"role" gorm:"size:60;index"`
}

// TenantInvitation is a pending membership offer.
type TenantInvitation struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time  `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time  `json:"updatedAt" gorm:"autoUpdateTime"`
	TenantID  uint       `json:"tenantId" gorm:"index"`
	Tenant    Tenant     `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
	InviterID uint       `json:"inviterId" gorm:"index"`
	Inviter   User       `json:"inviter,omitempty" gorm:"foreignKey:InviterID"`
	InviteeID uint       `json:"inviteeId" gorm:"index"`
	Invitee   User       `json:"invitee,omitempty" gorm:"foreignKey:InviteeID"`
	Role      string     `json:"role" gorm:"size:60;default:'member'"`
	Status    string     `json:"status" gorm:"size:20;index;default:'pending'"` // pending, accepted, rejected
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

func (Tenant) TableName() string           { return "tenants" }
func (TenantMember) TableName() string     { return "tenant_members" }
func (TenantInvitation) TableName() string { return "tenant_invitations" }

// GetUserByUID loads a user by primary key.
func GetUserByUID(db *gorm.DB, uid uint) (*User, error) {
	var user User
	if err := db.First(&user, uid).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail loads a user by email.
func GetUserByEmail(db *gorm.DB, email string) (*User, error) {
	var user User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// SetLastLogin records login time and source address.
func SetLastLogin(db *gorm.DB, user *User, ip string) error {
	now := time.Now()
	user.LastLogin = &now
	user.LastLoginIP = ip
	return db.Model(user).Updates(map[string]any{
		"last_login":    now,
		"last_login_ip": ip,
	}).Error
}

// CreateTenant creates a tenant record.
func CreateTenant(db *gorm.DB, tenant *Tenant) error {
	return db.Create(tenant).Error
}

// GetTenantByID loads a tenant by primary key.
func GetTenantByID(db *gorm.DB, id uint) (*Tenant, error) {
	var tenant Tenant
	if err := db.First(&tenant, id).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

// GetTenantBySlug loads a tenant by its scoping slug.
func GetTenantBySlug(db *gorm.DB, slug string) (*Tenant, error) {
	var tenant Tenant
	if err := db.Where("slug = ?", slug).First(&tenant).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

// ListTenantsForUser returns tenants the user belongs to. Super users see all tenants.
func ListTenantsForUser(db *gorm.DB, user *User) ([]Tenant, error) {
	var tenants []Tenant
	if user.IsSuperUser {
		err := db.Order("created_at DESC").Find(&tenants).Error
		return tenants, err
	}
	err := db.Joins("JOIN tenant_members ON tenant_members.tenant_id = tenants.id").
		Where("tenant_members.user_id = ?", user.ID).
		Order("tenants.created_at DESC").
		Find(&tenants).Error
	return tenants, err
}

// GetTenantMember returns the membership row for (tenant, user), if any.
func GetTenantMember(db *gorm.DB, tenantID, userID uint) (*TenantMember, error) {
	var member TenantMember
	err := db.Where("tenant_id = ? AND user_id = ?", tenantID, userID).First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// CanAccessTenant reports whether the user may read a tenant's data.
func CanAccessTenant(db *gorm.DB, user *User, tenantID uint) bool {
	if user.IsSuperUser {
		return true
	}
	_, err := GetTenantMember(db, tenantID, user.ID)
	return err == nil
}

// CanManageTenant reports whether the user may mutate a tenant.
func CanManageTenant(db *gorm.DB, user *User, tenantID uint) bool {
	if user.IsSuperUser {
		return true
	}
	member, err := GetTenantMember(db, tenantID, user.ID)
	if err != nil {
		return false
	}
	return member.Role == TenantRoleOwner || member.Role == TenantRoleAdmin
}
