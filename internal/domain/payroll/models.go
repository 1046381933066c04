package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RunStatusDraft     = "Draft"
	RunStatusProcessed = "Processed"
	RunStatusLocked    = "Locked"
)

// Issued reports whether a run's payslips are published. Payslips of a Draft
// run are leftovers of an interrupted Process and stay hidden.
func Issued(status string) bool {
	return status == RunStatusProcessed || status == RunStatusLocked
}

type Run struct {
	ID            string     `json:"id"`
	Period        string     `json:"period"`
	StartDate     string     `json:"startDate"`
	EndDate       string     `json:"endDate"`
	Status        string     `json:"status"`
	ProcessedDate *time.Time `json:"processedDate,omitempty"`
	ProcessedBy   string     `json:"processedBy,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

type RunInput struct {
	Period    string `json:"period"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// Amounts holds the earnings and deductions of one payslip.
type Amounts struct {
	BasicSalary      decimal.Decimal `json:"basicSalary"`
	HRA              decimal.Decimal `json:"hra"`
	SpecialAllowance decimal.Decimal `json:"specialAllowance"`
	Bonus            decimal.Decimal `json:"bonus"`
	VariablePay      decimal.Decimal `json:"variablePay"`
	GrossSalary      decimal.Decimal `json:"grossSalary"`
	IncomeTax        decimal.Decimal `json:"incomeTax"`
	ProvidentFund    decimal.Decimal `json:"providentFund"`
	Insurance        decimal.Decimal `json:"insurance"`
	LoanDeduction    decimal.Decimal `json:"loanDeduction"`
	TotalDeductions  decimal.Decimal `json:"totalDeductions"`
	NetSalary        decimal.Decimal `json:"netSalary"`
}

type Payslip struct {
	ID                string `json:"id"`
	EmployeeID        string `json:"employeeId"`
	PayrollRunID      string `json:"payrollRunId"`
	Period            string `json:"period"`
	EmployeeCode      string `json:"employeeCode"`
	EmployeeName      string `json:"employeeName"`
	Department        string `json:"department"`
	SalaryStructureID string `json:"salaryStructureId"`
	Amounts
	WorkingDays int       `json:"workingDays"`
	PresentDays int       `json:"presentDays"`
	LeaveDays   int       `json:"leaveDays"`
	GeneratedAt time.Time `json:"generatedAt"`
}

type PayslipFilter struct {
	EmployeeID   string
	PayrollRunID string
}

type ProcessResult struct {
	Run      Run       `json:"run"`
	Payslips []Payslip `json:"payslips"`
}

// PayslipID is the storage key for the payslip of one employee in one run.
func PayslipID(runID, employeeID string) string {
	return runID + ":" + employeeID
}
