package payroll

import (
	"time"

	"github.com/frahmantamala/dayflow/internal/core/datamodel/compensation"
	payrollDatamodel "github.com/frahmantamala/dayflow/internal/core/datamodel/payroll"
	"github.com/frahmantamala/dayflow/internal/user"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusProcessed Status = "processed"
	StatusPaid      Status = "paid"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessed, StatusPaid:
		return true
	default:
		return false
	}
}

type Payroll struct {
	ID              int64                   `json:"id"`
	UserID          int64                   `json:"userId"`
	User            *user.Summary           `json:"user,omitempty"`
	Month           int                     `json:"month"`
	Year            int                     `json:"year"`
	BasicSalary     float64                 `json:"basicSalary"`
	Allowances      compensation.Allowances `json:"allowances"`
	Deductions      compensation.Deductions `json:"deductions"`
	TotalAllowances float64                 `json:"totalAllowances"`
	TotalDeductions float64                 `json:"totalDeductions"`
	GrossSalary     float64                 `json:"grossSalary"`
	NetSalary       float64                 `json:"netSalary"`
	WorkingDays     int                     `json:"workingDays"`
	PresentDays     int                     `json:"presentDays"`
	Status          Status                  `json:"status"`
	PaidOn          *time.Time              `json:"paidOn,omitempty"`
	Remarks         string                  `json:"remarks,omitempty"`
	CreatedAt       time.Time               `json:"createdAt"`
	UpdatedAt       time.Time               `json:"updatedAt"`
}

type Totals struct {
	TotalAllowances float64
	TotalDeductions float64
	Gross           float64
	Net             float64
}

// ComputeTotals derives the payroll sums: gross is basic plus allowances,
// net is gross minus deductions. Sums are stored exactly as computed.
func ComputeTotals(basic float64, allowances compensation.Allowances, deductions compensation.Deductions) Totals {
	ta := allowances.Total()
	td := deductions.Total()
	gross := basic + ta
	return Totals{
		TotalAllowances: ta,
		TotalDeductions: td,
		Gross:           gross,
		Net:             gross - td,
	}
}

// Recompute refreshes the derived totals from the components.
func (p *Payroll) Recompute() {
	t := ComputeTotals(p.BasicSalary, p.Allowances, p.Deductions)
	p.TotalAllowances = t.TotalAllowances
	p.TotalDeductions = t.TotalDeductions
	p.GrossSalary = t.Gross
	p.NetSalary = t.Net
}

// FromSalaryStructure drafts a pending payroll for the period from the
// employee's stored salary structure.
func FromSalaryStructure(u *user.User, month, year int) *Payroll {
	p := &Payroll{
		UserID:      u.ID,
		Month:       month,
		Year:        year,
		BasicSalary: u.SalaryStructure.Basic,
		Allowances:  u.SalaryStructure.Allowances,
		Deductions:  u.SalaryStructure.Deductions,
		Status:      StatusPending,
	}
	p.Recompute()
	return p
}

func ToDataModel(p *Payroll) *payrollDatamodel.Payroll {
	return &payrollDatamodel.Payroll{
		ID:              p.ID,
		UserID:          p.UserID,
		Month:           p.Month,
		Year:            p.Year,
		BasicSalary:     p.BasicSalary,
		Allowances:      p.Allowances,
		Deductions:      p.Deductions,
		TotalAllowances: p.TotalAllowances,
		TotalDeductions: p.TotalDeductions,
		GrossSalary:     p.GrossSalary,
		NetSalary:       p.NetSalary,
		WorkingDays:     p.WorkingDays,
		PresentDays:     p.PresentDays,
		Status:          string(p.Status),
		PaidOn:          p.PaidOn,
		Remarks:         p.Remarks,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func FromDataModel(m *payrollDatamodel.Payroll) *Payroll {
	return &Payroll{
		ID:              m.ID,
		UserID:          m.UserID,
		User:            user.SummaryFromDataModel(m.User),
		Month:           m.Month,
		Year:            m.Year,
		BasicSalary:     m.BasicSalary,
		Allowances:      m.Allowances,
		Deductions:      m.Deductions,
		TotalAllowances: m.TotalAllowances,
		TotalDeductions: m.TotalDeductions,
		GrossSalary:     m.GrossSalary,
		NetSalary:       m.NetSalary,
		WorkingDays:     m.WorkingDays,
		PresentDays:     m.PresentDays,
		Status:          Status(m.Status),
		PaidOn:          m.PaidOn,
		Remarks:         m.Remarks,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func FromDataModelSlice(rows []*payrollDatamodel.Payroll) []*Payroll {
	result := make([]*Payroll, len(rows))
	for i, r := range rows {
		result[i] = FromDataModel(r)
	}
	return result
}
