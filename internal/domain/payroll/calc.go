package payroll

import (
	"github.com/shopspring/decimal"

	"hrpayroll/internal/domain/core"
)

var incomeTaxRate = decimal.New(10, -2)

// ComputeAmounts applies the flat structure policy: earnings are the
// structure figures as they stand, provident fund is the employer PF figure
// and income tax is 10% of gross rounded to a whole unit.
func ComputeAmounts(structure core.SalaryStructure, loanDeduction decimal.Decimal) Amounts {
	a := Amounts{
		BasicSalary:      structure.BasicSalary,
		HRA:              structure.HRA,
		SpecialAllowance: structure.SpecialAllowance,
		Bonus:            structure.Bonus,
		VariablePay:      structure.VariablePay,
		ProvidentFund:    structure.EmployerPF,
		Insurance:        structure.Insurance,
		LoanDeduction:    loanDeduction,
	}
	a.GrossSalary = a.BasicSalary.Add(a.HRA).Add(a.SpecialAllowance).Add(a.Bonus).Add(a.VariablePay)
	a.IncomeTax = a.GrossSalary.Mul(incomeTaxRate).Round(0)
	a.TotalDeductions = a.IncomeTax.Add(a.ProvidentFund).Add(a.Insurance).Add(a.LoanDeduction)
	a.NetSalary = a.GrossSalary.Sub(a.TotalDeductions)
	return a
}
