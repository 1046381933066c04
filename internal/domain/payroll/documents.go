package payroll

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const registerSheet = "Register"

func RenderPayslipPDF(slip Payslip, run Run) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s (%s)", slip.EmployeeName, slip.EmployeeCode))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Department: %s", slip.Department))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s (%s to %s)", run.Period, run.StartDate, run.EndDate))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Attendance: %d present of %d working days, %d leave days", slip.PresentDays, slip.WorkingDays, slip.LeaveDays))
	pdf.Ln(12)

	type line struct {
		label  string
		amount decimal.Decimal
	}
	section := func(title string, lines []line) {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, title)
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 11)
		for _, item := range lines {
			pdf.CellFormat(100, 7, item.label, "", 0, "L", false, 0, "")
			pdf.CellFormat(50, 7, item.amount.StringFixed(2), "", 1, "R", false, 0, "")
		}
		pdf.Ln(4)
	}
	section("Earnings", []line{
		{"Basic salary", slip.BasicSalary},
		{"HRA", slip.HRA},
		{"Special allowance", slip.SpecialAllowance},
		{"Bonus", slip.Bonus},
		{"Variable pay", slip.VariablePay},
		{"Gross salary", slip.GrossSalary},
	})
	section("Deductions", []line{
		{"Income tax", slip.IncomeTax},
		{"Provident fund", slip.ProvidentFund},
		{"Insurance", slip.Insurance},
		{"Loan deduction", slip.LoanDeduction},
		{"Total deductions", slip.TotalDeductions},
	})
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(100, 9, "Net salary", "T", 0, "L", false, 0, "")
	pdf.CellFormat(50, 9, slip.NetSalary.StringFixed(2), "T", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildRegisterXLSX writes one row per payslip plus a totals row.
func BuildRegisterXLSX(run Run, payslips []Payslip) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(registerSheet)
	if err != nil {
		return nil, err
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)

	header := []string{"Employee Code", "Name", "Department", "Gross Salary", "Income Tax", "Provident Fund", "Insurance", "Total Deductions", "Net Salary", "Present Days", "Working Days"}
	for c, v := range header {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		_ = f.SetCellValue(registerSheet, cell, v)
	}

	var gross, deductions, net decimal.Decimal
	for r, slip := range payslips {
		values := []any{
			slip.EmployeeCode,
			slip.EmployeeName,
			slip.Department,
			slip.GrossSalary.InexactFloat64(),
			slip.IncomeTax.InexactFloat64(),
			slip.ProvidentFund.InexactFloat64(),
			slip.Insurance.InexactFloat64(),
			slip.TotalDeductions.InexactFloat64(),
			slip.NetSalary.InexactFloat64(),
			slip.PresentDays,
			slip.WorkingDays,
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			_ = f.SetCellValue(registerSheet, cell, v)
		}
		gross = gross.Add(slip.GrossSalary)
		deductions = deductions.Add(slip.TotalDeductions)
		net = net.Add(slip.NetSalary)
	}

	totalRow := len(payslips) + 2
	totals := map[int]any{1: "Total " + run.Period, 4: gross.InexactFloat64(), 8: deductions.InexactFloat64(), 9: net.InexactFloat64()}
	for c, v := range totals {
		cell, _ := excelize.CoordinatesToCellName(c, totalRow)
		_ = f.SetCellValue(registerSheet, cell, v)
	}

	_ = f.SetColWidth(registerSheet, "A", "A", 14)
	_ = f.SetColWidth(registerSheet, "B", "B", 24)
	_ = f.SetColWidth(registerSheet, "C", "C", 18)
	_ = f.SetColWidth(registerSheet, "D", "K", 16)

	style, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	_ = f.SetCellStyle(registerSheet, "A1", "K1", style)
	first, _ := excelize.CoordinatesToCellName(1, totalRow)
	last, _ := excelize.CoordinatesToCellName(len(header), totalRow)
	_ = f.SetCellStyle(registerSheet, first, last, style)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
