package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidRole(t *testing.T) {
	assert.True(t, IsValidRole(RoleStudent))
	assert.True(t, IsValidRole(RoleProvider))
	assert.True(t, IsValidRole(RoleVerifier))
	assert.True(t, IsValidRole(RoleAdmin))
	assert.False(t, IsValidRole("sponsor"))
	assert.False(t, IsValidRole(""))
}

func TestRoleHasCapability(t *testing.T) {
	cases := []struct {
		role       string
		capability Capability
		allowed    bool
	}{
		{RoleProvider, CapCreateScholarship, true},
		{RoleAdmin, CapCreateScholarship, true},
		{RoleStudent, CapCreateScholarship, false},
		{RoleVerifier, CapCreateScholarship, false},

		{RoleProvider, CapManageScholarship, true},
		{RoleStudent, CapManageScholarship, false},

		{RoleStudent, CapSubmitApplication, true},
		{RoleProvider, CapSubmitApplication, false},
		{RoleAdmin, CapSubmitApplication, false},

		{RoleProvider, CapReviewApplications, true},
		{RoleAdmin, CapReviewApplications, true},
		{RoleStudent, CapReviewApplications, false},

		{RoleVerifier, CapVerifyUsers, true},
		{RoleAdmin, CapVerifyUsers, true},
		{RoleProvider, CapVerifyUsers, false},

		{RoleAdmin, CapManageUsers, true},
		{RoleVerifier, CapManageUsers, false},

		{"", CapCreateScholarship, false},
		{RoleAdmin, Capability("unknown"), false},
	}

	for _, c := range cases {
		assert.Equal(t, c.allowed, RoleHasCapability(c.role, c.capability),
			"role %q capability %q", c.role, c.capability)
	}
}
