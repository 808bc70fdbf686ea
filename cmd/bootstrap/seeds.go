package bootstrap

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/voxkit/voxconsole/internal/models"
	"github.com/voxkit/voxconsole/pkg/logger"
	"github.com/voxkit/voxconsole/pkg/utils"
)

type SeedService struct {
	db *gorm.DB
}

func (s *SeedService) SeedAll() error {
	if err := s.seedAdminUser(); err != nil {
		return err
	}
	return s.seedDemoTenant()
}

// seedAdminUser creates the default super admin when no user exists yet.
func (s *SeedService) seedAdminUser() error {
	var count int64
	if err := s.db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	email := utils.GetEnv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@localhost"
	}
	password := utils.GetEnv("ADMIN_PASSWORD")
	if password == "" {
		password = utils.RandText(12)
		logger.Info("generated admin password", zap.String("email", email), zap.String("password", password))
	}

	admin := &models.User{
		Email:       email,
		Password:    models.HashPassword(password),
		DisplayName: "Administrator",
		IsSuperUser: true,
		Enabled:     true,
	}
	return s.db.Create(admin).Error
}

// seedDemoTenant makes a first tenant so the console is usable right away.
func (s *SeedService) seedDemoTenant() error {
	var count int64
	if err := s.db.Model(&models.Tenant{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	var admin models.User
	if err := s.db.Where("is_super_user = ?", true).First(&admin).Error; err != nil {
		return err
	}

	tenant := &models.Tenant{
		Name:      "Demo Tenant",
		Slug:      "demo",
		APIKey:    uuid.NewString(),
		SipDomain: "demo.localhost",
		Enabled:   true,
		CreatorID: admin.ID,
	}
	if err := models.CreateTenant(s.db, tenant); err != nil {
		return err
	}
	member := &models.TenantMember{TenantID: tenant.ID, UserID: admin.ID, Role: models.TenantRoleOwner}
	return s.db.Create(member).Error
}
