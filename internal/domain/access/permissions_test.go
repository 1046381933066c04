package access

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRolePermissionsSubset(t *testing.T) {
	for role, perms := range RolePermissions {
		require.NotEmpty(t, perms, "role %s has no permissions", role)
		for _, perm := range perms {
			require.True(t, KnownPermission(perm), "role %s has unknown permission %s", role, perm)
		}
	}
	require.False(t, KnownPermission("payroll.delete"))
}

func TestDefaultPermissionsUnique(t *testing.T) {
	seen := map[string]struct{}{}
	for _, perm := range DefaultPermissions {
		_, dup := seen[perm]
		require.False(t, dup, "duplicate permission %s", perm)
		seen[perm] = struct{}{}
	}
}

func TestAdminOnlyPermissions(t *testing.T) {
	adminOnly := []string{
		PermEmployeesManage,
		PermSalaryManage,
		PermUsersManage,
		PermLeaveDecide,
		PermPayrollManage,
		PermAuditRead,
		PermReportsRead,
	}
	for _, perm := range adminOnly {
		require.True(t, HasPermission(RoleAdmin, perm), "admin should have %s", perm)
		require.False(t, HasPermission(RoleEmployee, perm), "employee should not have %s", perm)
	}
}
