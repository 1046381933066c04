package core

import (
	"strings"

	"hrpayroll/internal/domain/access"
)

// FilterEmployeeFields masks banking and tax identifiers for non-admin callers.
func FilterEmployeeFields(emp *Employee, caller *access.Caller) {
	if caller.IsAdmin() {
		return
	}
	emp.BankAccount = maskTail(emp.BankAccount)
	emp.TaxID = maskTail(emp.TaxID)
}

func maskTail(value string) string {
	if len(value) <= 4 {
		return strings.Repeat("*", len(value))
	}
	return strings.Repeat("*", len(value)-4) + value[len(value)-4:]
}
