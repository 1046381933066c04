package payroll

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"hrpayroll/internal/domain/core"
)

func structure(basic, hra, special, bonus, variable, pf, insurance int64) core.SalaryStructure {
	return core.SalaryStructure{
		BasicSalary:      decimal.NewFromInt(basic),
		HRA:              decimal.NewFromInt(hra),
		SpecialAllowance: decimal.NewFromInt(special),
		Bonus:            decimal.NewFromInt(bonus),
		VariablePay:      decimal.NewFromInt(variable),
		EmployerPF:       decimal.NewFromInt(pf),
		Insurance:        decimal.NewFromInt(insurance),
	}
}

func requireAmount(t *testing.T, want int64, got decimal.Decimal, field string) {
	t.Helper()
	require.True(t, got.Equal(decimal.NewFromInt(want)), "%s: expected %d, got %s", field, want, got)
}

func TestComputeAmounts(t *testing.T) {
	a := ComputeAmounts(structure(80000, 32000, 28000, 10000, 5000, 9600, 2000), decimal.Zero)
	requireAmount(t, 155000, a.GrossSalary, "gross")
	requireAmount(t, 15500, a.IncomeTax, "income tax")
	requireAmount(t, 27100, a.TotalDeductions, "deductions")
	requireAmount(t, 127900, a.NetSalary, "net")
}

func TestComputeAmountsRoundsIncomeTax(t *testing.T) {
	tests := []struct {
		gross string
		tax   int64
	}{
		{"1005", 101},
		{"1004", 100},
		{"999.99", 100},
		{"0", 0},
	}
	for _, tt := range tests {
		s := core.SalaryStructure{BasicSalary: decimal.RequireFromString(tt.gross)}
		a := ComputeAmounts(s, decimal.Zero)
		requireAmount(t, tt.tax, a.IncomeTax, "tax on "+tt.gross)
	}
}

func TestComputeAmountsIncludesLoanDeduction(t *testing.T) {
	a := ComputeAmounts(structure(30000, 12000, 8000, 0, 0, 3600, 500), decimal.NewFromInt(1000))
	want := a.IncomeTax.Add(a.ProvidentFund).Add(a.Insurance).Add(a.LoanDeduction)
	require.True(t, a.TotalDeductions.Equal(want), "expected deductions %s, got %s", want, a.TotalDeductions)
	require.True(t, a.NetSalary.Equal(a.GrossSalary.Sub(a.TotalDeductions)))
	requireAmount(t, 39900, a.NetSalary, "net")
}
