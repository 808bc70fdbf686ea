package models

import (
	"time"

	"gorm.io/gorm"
)

// SipUserStatus is the registration state of a PBX endpoint.
type SipUserStatus string

const (
	SipUserStatusRegistered   SipUserStatus = "registered"
	SipUserStatusUnregistered SipUserStatus = "unregistered"
	SipUserStatusExpired      SipUserStatus = "expired"
)

// SipUser is a tenant-owned PBX endpoint account.
type SipUser struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time  `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time  `json:"updatedAt" gorm:"autoUpdateTime"`
	DeletedAt *time.Time `json:"-" gorm:"index"`

	Username string `json:"username" gorm:"size:128;index;not null"`
	Password string `json:"-" gorm:"size:128"`
	Domain   string `json:"domain,omitempty" gorm:"size:256"`

	Contact   string        `json:"contact,omitempty" gorm:"size:256"`
	Expires   int           `json:"expires" gorm:"default:3600"`
	ExpiresAt *time.Time    `json:"expiresAt,omitempty"`
	Status    SipUserStatus `json:"status" gorm:"size:20;default:'unregistered';index"`
	UserAgent string        `json:"userAgent,omitempty" gorm:"size:256"`
	RemoteIP  string        `json:"remoteIp,omitempty" gorm:"size:64"`

	TenantID uint   `json:"tenantId" gorm:"index;not null"`
	Tenant   Tenant `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`

	DisplayName string `json:"displayName,omitempty" gorm:"size:128"`
	// No column default: a default:true tag makes gorm omit the zero value
	// on insert, so an endpoint could never be created disabled.
	Enabled bool   `json:"enabled"`
	Notes   string `json:"notes,omitempty" gorm:"type:text"`
}

func (SipUser) TableName() string {
	return "sip_users"
}

// IsRegistered reports whether the endpoint currently holds a registration.
func (su *SipUser) IsRegistered() bool {
	return su.Status == SipUserStatusRegistered
}

// IsExpired reports whether the registration has lapsed.
func (su *SipUser) IsExpired() bool {
	if su.ExpiresAt == nil {
		return false
	}
	return time.Now().After(*su.ExpiresAt)
}

// UpdateExpiresAt derives ExpiresAt from the Expires interval.
func (su *SipUser) UpdateExpiresAt() {
	if su.Expires > 0 {
		expiresAt := time.Now().Add(time.Duration(su.Expires) * time.Second)
		su.ExpiresAt = &expiresAt
	}
}

// CreateSipUser creates a PBX endpoint account.
func CreateSipUser(db *gorm.DB, sipUser *SipUser) error {
	return db.Create(sipUser).Error
}

// GetSipUserByID loads an endpoint by primary key.
func GetSipUserByID(db *gorm.DB, id uint) (*SipUser, error) {
	var sipUser SipUser
	if err := db.First(&sipUser, id).Error; err != nil {
		return nil, err
	}
	return &sipUser, nil
}

// GetSipUserByUsername loads an endpoint by username within a tenant.
func GetSipUserByUsername(db *gorm.DB, tenantID uint, username string) (*SipUser, error) {
	var sipUser SipUser
	err := db.Where("tenant_id = ? AND username = ?", tenantID, username).First(&sipUser).Error
	if err != nil {
		return nil, err
	}
	return &sipUser, nil
}

// UpdateSipUser saves an endpoint record.
func UpdateSipUser(db *gorm.DB, sipUser *SipUser) error {
	return db.Save(sipUser).Error
}

// DeleteSipUser removes an endpoint record.
func DeleteSipUser(db *gorm.DB, id uint) error {
	return db.Delete(&SipUser{}, id).Error
}

// ListSipUsersByTenant lists a tenant's endpoints, newest first.
func ListSipUsersByTenant(db *gorm.DB, tenantID uint, onlyEnabled bool, limit int) ([]SipUser, error) {
	var sipUsers []SipUser
	query := db.Where("tenant_id = ?", tenantID).Order("created_at DESC")
	if onlyEnabled {
		query = query.Where("enabled = ?", true)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&sipUsers).Error
	return sipUsers, err
}
