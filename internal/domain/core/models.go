package core

import "github.com/shopspring/decimal"

const (
	EmploymentFullTime = "Full-time"
	EmploymentContract = "Contract"
	EmploymentPartTime = "Part-time"
)

var EmploymentTypes = []string{EmploymentFullTime, EmploymentContract, EmploymentPartTime}

type Employee struct {
	ID                string `json:"id"`
	EmployeeCode      string `json:"employeeId"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	DateOfJoining     string `json:"dateOfJoining"`
	Department        string `json:"department"`
	Designation       string `json:"designation"`
	EmploymentType    string `json:"employmentType"`
	BankAccount       string `json:"bankAccount"`
	IFSCCode          string `json:"ifscCode"`
	TaxID             string `json:"taxId"`
	SalaryStructureID string `json:"salaryStructureId"`
	IsActive          bool   `json:"isActive"`
}

type SalaryStructure struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	BasicSalary      decimal.Decimal `json:"basicSalary"`
	HRA              decimal.Decimal `json:"hra"`
	SpecialAllowance decimal.Decimal `json:"specialAllowance"`
	Bonus            decimal.Decimal `json:"bonus"`
	VariablePay      decimal.Decimal `json:"variablePay"`
	EmployerPF       decimal.Decimal `json:"employerPF"`
	Insurance        decimal.Decimal `json:"insurance"`
	EffectiveFrom    string          `json:"effectiveFrom"`
}

// EmployeeInput is the payload for creating an employee.
type EmployeeInput struct {
	EmployeeCode      string `json:"employeeId"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	DateOfJoining     string `json:"dateOfJoining"`
	Department        string `json:"department"`
	Designation       string `json:"designation"`
	EmploymentType    string `json:"employmentType"`
	BankAccount       string `json:"bankAccount"`
	IFSCCode          string `json:"ifscCode"`
	TaxID             string `json:"taxId"`
	SalaryStructureID string `json:"salaryStructureId"`
}

// EmployeePatch updates only the fields that are set.
type EmployeePatch struct {
	EmployeeCode      *string `json:"employeeId"`
	Name              *string `json:"name"`
	Email             *string `json:"email"`
	Phone             *string `json:"phone"`
	DateOfJoining     *string `json:"dateOfJoining"`
	Department        *string `json:"department"`
	Designation       *string `json:"designation"`
	EmploymentType    *string `json:"employmentType"`
	BankAccount       *string `json:"bankAccount"`
	IFSCCode          *string `json:"ifscCode"`
	TaxID             *string `json:"taxId"`
	SalaryStructureID *string `json:"salaryStructureId"`
	IsActive          *bool   `json:"isActive"`
}

type SalaryStructureInput struct {
	Name             string          `json:"name"`
	BasicSalary      decimal.Decimal `json:"basicSalary"`
	HRA              decimal.Decimal `json:"hra"`
	SpecialAllowance decimal.Decimal `json:"specialAllowance"`
	Bonus            decimal.Decimal `json:"bonus"`
	VariablePay      decimal.Decimal `json:"variablePay"`
	EmployerPF       decimal.Decimal `json:"employerPF"`
	Insurance        decimal.Decimal `json:"insurance"`
	EffectiveFrom    string          `json:"effectiveFrom"`
}
