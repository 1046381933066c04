// Package access decides who may run an operation and which employee's
// records the operation may touch.
package access

import (
	"fmt"
	"strings"

	"hrpayroll/internal/domain/apperr"
)

// Caller is the resolved identity behind a request. A nil *Caller is an
// unauthenticated request.
type Caller struct {
	UserID     string `json:"id"`
	Email      string `json:"email,omitempty"`
	Role       string `json:"role"`
	EmployeeID string `json:"employeeId,omitempty"`
}

func (c *Caller) IsAdmin() bool {
	return c != nil && c.Role == RoleAdmin
}

// Authorize fails with ErrUnauthenticated for a nil caller and ErrForbidden
// when the caller's role lacks the permission.
func Authorize(c *Caller, permission string) error {
	if c == nil {
		return apperr.ErrUnauthenticated
	}
	if !HasPermission(c.Role, permission) {
		return fmt.Errorf("%w: role %s lacks %s", apperr.ErrForbidden, c.Role, permission)
	}
	return nil
}

// ReadScope returns the employee id a read must be filtered to. Admins get the
// requested id back, where empty means every employee. Employees always get
// their own id whatever they asked for.
func ReadScope(c *Caller, requested string) (string, error) {
	if c == nil {
		return "", apperr.ErrUnauthenticated
	}
	if c.IsAdmin() {
		return strings.TrimSpace(requested), nil
	}
	return ownEmployeeID(c)
}

// WriteOwner returns the employee id a created record must carry. Employees
// are always stamped with their own id and any supplied id is ignored. Admins
// act on behalf of the employee they name.
func WriteOwner(c *Caller, supplied string) (string, error) {
	if c == nil {
		return "", apperr.ErrUnauthenticated
	}
	if c.IsAdmin() {
		supplied = strings.TrimSpace(supplied)
		if supplied == "" {
			return "", fmt.Errorf("%w: employeeId is required", apperr.ErrInvalidInput)
		}
		return supplied, nil
	}
	return ownEmployeeID(c)
}

// CanSee reports whether a record owned by employeeID is visible to c.
func CanSee(c *Caller, employeeID string) bool {
	if c == nil {
		return false
	}
	return c.IsAdmin() || (c.EmployeeID != "" && c.EmployeeID == employeeID)
}

func ownEmployeeID(c *Caller) (string, error) {
	if c.EmployeeID == "" {
		return "", fmt.Errorf("%w: no employee record is linked to this account", apperr.ErrForbidden)
	}
	return c.EmployeeID, nil
}
