package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTenantTestDB(t *testing.T) *gorm.DB {
	return setupTestDBWithSilentLogger(t,
		&User{},
		&Tenant{},
		&TenantMember{},
		&TenantInvitation{},
	)
}

func createTestUser(t *testing.T, db *gorm.DB, email string, super bool) *User {
	user := &User{
		Email:       email,
		Password:    HashPassword("password123"),
		IsSuperUser: super,
		Enabled:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestTenant(t *testing.T, db *gorm.DB, slug string, creator *User) *Tenant {
	tenant := &Tenant{
		Name:      "Tenant " + slug,
		Slug:      slug,
		Enabled:   true,
		CreatorID: creator.ID,
	}
	require.NoError(t, CreateTenant(db, tenant))
	return tenant
}

func TestGetUserByEmail(t *testing.T) {
	db := setupTenantTestDB(t)
	created := createTestUser(t, db, "alice@example.com", false)

	user, err := GetUserByEmail(db, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	_, err = GetUserByEmail(db, "nobody@example.com")
	assert.Error(t, err)
}

func TestSetLastLogin(t *testing.T) {
	db := setupTenantTestDB(t)
	user := createTestUser(t, db, "alice@example.com", false)

	require.NoError(t, SetLastLogin(db, user, "192.0.2.1"))

	reloaded, err := GetUserByUID(db, user.ID)
	require.NoError(t, err)
	assert.NotNil(t, reloaded.LastLogin)
	assert.Equal(t, "192.0.2.1", reloaded.LastLoginIP)
}

func TestGetTenantBySlug(t *testing.T) {
	db := setupTenantTestDB(t)
	user := createTestUser(t, db, "owner@example.com", false)
	tenant := createTestTenant(t, db, "acme", user)

	found, err := GetTenantBySlug(db, "acme")
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, found.ID)

	_, err = GetTenantBySlug(db, "missing")
	assert.Error(t, err)
}

func TestCreateTenantDisabled(t *testing.T) {
	db := setupTenantTestDB(t)
	user := createTestUser(t, db, "owner@example.com", false)

	tenant := &Tenant{Name: "Suspended", Slug: "suspended", Enabled: false, CreatorID: user.ID}
	require.NoError(t, CreateTenant(db, tenant))

	reloaded, err := GetTenantBySlug(db, "suspended")
	require.NoError(t, err)
	assert.False(t, reloaded.Enabled)
}

func TestListTenantsForUser(t *testing.T) {
	db := setupTenantTestDB(t)
	owner := createTestUser(t, db, "owner@example.com", false)
	outsider := createTestUser(t, db, "outsider@example.com", false)
	super := createTestUser(t, db, "root@example.com", true)

	tenant1 := createTestTenant(t, db, "one", owner)
	createTestTenant(t, db, "two", owner)
	require.NoError(t, db.Create(&TenantMember{TenantID: tenant1.ID, UserID: owner.ID, Role: TenantRoleOwner}).Error)

	// Membership-scoped listing.
	tenants, err := ListTenantsForUser(db, owner)
	require.NoError(t, err)
	require.Len(t, tenants, 1)
	assert.Equal(t, "one", tenants[0].Slug)

	tenants, err = ListTenantsForUser(db, outsider)
	require.NoError(t, err)
	assert.Empty(t, tenants)

	// Super users see everything.
	tenants, err = ListTenantsForUser(db, super)
	require.NoError(t, err)
	assert.Len(t, tenants, 2)
}

func TestTenantAccessControl(t *testing.T) {
	db := setupTenantTestDB(t)
	owner := createTestUser(t, db, "owner@example.com", false)
	member := createTestUser(t, db, "member@example.com", false)
	outsider := createTestUser(t, db, "outsider@example.com", false)
	super := createTestUser(t, db, "root@example.com", true)
	tenant := createTestTenant(t, db, "acme", owner)

	require.NoError(t, db.Create(&TenantMember{TenantID: tenant.ID, UserID: owner.ID, Role: TenantRoleOwner}).Error)
	require.NoError(t, db.Create(&TenantMember{TenantID: tenant.ID, UserID: member.ID, Role: TenantRoleMember}).Error)

	assert.True(t, CanAccessTenant(db, owner, tenant.ID))
	assert.True(t, CanAccessTenant(db, member, tenant.ID))
	assert.False(t, CanAccessTenant(db, outsider, tenant.ID))
	assert.True(t, CanAccessTenant(db, super, tenant.ID))

	assert.True(t, CanManageTenant(db, owner, tenant.ID))
	assert.False(t, CanManageTenant(db, member, tenant.ID))
	assert.False(t, CanManageTenant(db, outsider, tenant.ID))
	assert.True(t, CanManageTenant(db, super, tenant.ID))
}

func TestHashPassword(t *testing.T) {
	hashed := HashPassword("secret")
	assert.True(t, len(hashed) > 7)
	assert.Equal(t, hashed, HashPassword(hashed)) // idempotent on hashed input
	assert.Empty(t, HashPassword(""))

	user := &User{Password: hashed}
	assert.True(t, CheckPassword(user, "secret"))
	assert.False(t, CheckPassword(user, "wrong"))
	assert.False(t, CheckPassword(&User{}, "anything"))
}
