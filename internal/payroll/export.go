package payroll

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/frahmantamala/dayflow/internal"
)

var registerHeader = []interface{}{
	"Employee ID", "Name", "Department", "Basic", "Allowances", "Deductions",
	"Gross", "Net", "Working Days", "Present Days", "Status", "Paid On",
}

// ExportPayroll writes the period's payroll register as an xlsx workbook.
func (s *Service) ExportPayroll(ctx context.Context, w io.Writer, month, year *int) error {
	if month == nil || year == nil {
		return ErrPeriodRequired
	}
	if *month < 1 || *month > 12 {
		return ErrInvalidMonth
	}

	records, err := s.list(ctx, Filter{Month: month, Year: year})
	if err != nil {
		return err
	}

	if err := WriteRegister(w, *month, *year, records); err != nil {
		s.logger.Error("failed to write payroll register", "month", *month, "year", *year, "error", err)
		return internal.NewInternalError("Failed to export payroll", err)
	}
	return nil
}

// RegisterFilename names the workbook for a period.
func RegisterFilename(month, year int) string {
	return fmt.Sprintf("payroll-%d-%02d.xlsx", year, month)
}

// WriteRegister renders records into one sheet with a header row and a
// totals row.
func WriteRegister(w io.Writer, month, year int, records []*Payroll) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := fmt.Sprintf("Payroll %02d-%d", month, year)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	if err := f.SetSheetRow(sheet, "A1", &registerHeader); err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return err
	}

	var gross, net float64
	for i, p := range records {
		name, employeeID, department := "", "", ""
		if p.User != nil {
			name, employeeID, department = p.User.Name, p.User.EmployeeID, p.User.Department
		}
		paidOn := ""
		if p.PaidOn != nil {
			paidOn = p.PaidOn.Format("2006-01-02")
		}
		row := []interface{}{
			employeeID, name, department, p.BasicSalary, p.TotalAllowances, p.TotalDeductions,
			p.GrossSalary, p.NetSalary, p.WorkingDays, p.PresentDays, string(p.Status), paidOn,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
		gross += p.GrossSalary
		net += p.NetSalary
	}

	totalsRow := len(records) + 2
	totals := []interface{}{"", "Total", "", "", "", "", roundCents(gross), roundCents(net)}
	cell, err := excelize.CoordinatesToCellName(1, totalsRow)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &totals); err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, totalsRow, totalsRow, bold); err != nil {
		return err
	}

	if err := f.SetColWidth(sheet, "A", "L", 14); err != nil {
		return err
	}

	_, err = f.WriteTo(w)
	return err
}

// roundCents rounds register totals for display; stored totals are exact.
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
