package access

const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

const (
	PermEmployeesManage  = "employees.manage"
	PermEmployeeSelfRead = "employees.self.read"
	PermSalaryManage     = "salary.manage"
	PermUsersManage      = "users.manage"
	PermAttendanceRead   = "attendance.read"
	PermAttendanceRecord = "attendance.record"
	PermAttendanceClock  = "attendance.clock"
	PermLeaveRead        = "leave.read"
	PermLeaveSubmit      = "leave.submit"
	PermLeaveDecide      = "leave.decide"
	PermLeaveBalanceRead = "leave.balance.read"
	PermPayrollManage    = "payroll.manage"
	PermPayslipRead      = "payslip.read"
	PermAuditRead        = "audit.read"
	PermReportsRead      = "reports.read"
)

// DefaultPermissions is the catalog every role and route guard draws from.
var DefaultPermissions = []string{
	PermEmployeesManage,
	PermEmployeeSelfRead,
	PermSalaryManage,
	PermUsersManage,
	PermAttendanceRead,
	PermAttendanceRecord,
	PermAttendanceClock,
	PermLeaveRead,
	PermLeaveSubmit,
	PermLeaveDecide,
	PermLeaveBalanceRead,
	PermPayrollManage,
	PermPayslipRead,
	PermAuditRead,
	PermReportsRead,
}

var RolePermissions = map[string][]string{
	RoleAdmin: {
		PermEmployeesManage,
		PermSalaryManage,
		PermUsersManage,
		PermAttendanceRead,
		PermAttendanceRecord,
		PermLeaveRead,
		PermLeaveSubmit,
		PermLeaveDecide,
		PermLeaveBalanceRead,
		PermPayrollManage,
		PermPayslipRead,
		PermAuditRead,
		PermReportsRead,
	},
	RoleEmployee: {
		PermEmployeeSelfRead,
		PermAttendanceRead,
		PermAttendanceRecord,
		PermAttendanceClock,
		PermLeaveRead,
		PermLeaveSubmit,
		PermLeaveBalanceRead,
		PermPayslipRead,
	},
}

var (
	rolePermissionSet = buildPermissionSet()
	knownPermissions  = buildCatalog()
)

func buildCatalog() map[string]struct{} {
	out := make(map[string]struct{}, len(DefaultPermissions))
	for _, perm := range DefaultPermissions {
		out[perm] = struct{}{}
	}
	return out
}

func buildPermissionSet() map[string]map[string]struct{} {
	out := make(map[string]map[string]struct{}, len(RolePermissions))
	for role, perms := range RolePermissions {
		set := make(map[string]struct{}, len(perms))
		for _, perm := range perms {
			set[perm] = struct{}{}
		}
		out[role] = set
	}
	return out
}

func HasPermission(role, permission string) bool {
	_, ok := rolePermissionSet[role][permission]
	return ok
}

func KnownPermission(permission string) bool {
	_, ok := knownPermissions[permission]
	return ok
}

func ValidRole(role string) bool {
	_, ok := RolePermissions[role]
	return ok
}
