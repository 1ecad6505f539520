package payroll

import "github.com/frahmantamala/dayflow/internal/core/datamodel/compensation"

// AllowancesPatch merges into existing allowances field by field.
type AllowancesPatch struct {
	HRA       *float64 `json:"hra" validate:"omitempty,gte=0"`
	Transport *float64 `json:"transport" validate:"omitempty,gte=0"`
	Medical   *float64 `json:"medical" validate:"omitempty,gte=0"`
	Other     *float64 `json:"other" validate:"omitempty,gte=0"`
}

func (p *AllowancesPatch) Apply(a compensation.Allowances) compensation.Allowances {
	if p == nil {
		return a
	}
	setIf(&a.HRA, p.HRA)
	setIf(&a.Transport, p.Transport)
	setIf(&a.Medical, p.Medical)
	setIf(&a.Other, p.Other)
	return a
}

type DeductionsPatch struct {
	Tax       *float64 `json:"tax" validate:"omitempty,gte=0"`
	PF        *float64 `json:"pf" validate:"omitempty,gte=0"`
	Insurance *float64 `json:"insurance" validate:"omitempty,gte=0"`
	Other     *float64 `json:"other" validate:"omitempty,gte=0"`
}

func (p *DeductionsPatch) Apply(d compensation.Deductions) compensation.Deductions {
	if p == nil {
		return d
	}
	setIf(&d.Tax, p.Tax)
	setIf(&d.PF, p.PF)
	setIf(&d.Insurance, p.Insurance)
	setIf(&d.Other, p.Other)
	return d
}

func setIf(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

type CreatePayrollDTO struct {
	UserID      int64            `json:"userId" validate:"required,gt=0"`
	Month       int              `json:"month" validate:"required,min=1,max=12"`
	Year        int              `json:"year" validate:"required,min=2000,max=2100"`
	BasicSalary float64          `json:"basicSalary" validate:"required,gt=0"`
	Allowances  *AllowancesPatch `json:"allowances"`
	Deductions  *DeductionsPatch `json:"deductions"`
	WorkingDays *int             `json:"workingDays" validate:"omitempty,gte=0,lte=31"`
	PresentDays *int             `json:"presentDays" validate:"omitempty,gte=0,lte=31"`
	Remarks     string           `json:"remarks" validate:"max=500"`
}

type UpdatePayrollDTO struct {
	BasicSalary *float64         `json:"basicSalary" validate:"omitempty,gt=0"`
	Allowances  *AllowancesPatch `json:"allowances"`
	Deductions  *DeductionsPatch `json:"deductions"`
	WorkingDays *int             `json:"workingDays" validate:"omitempty,gte=0,lte=31"`
	PresentDays *int             `json:"presentDays" validate:"omitempty,gte=0,lte=31"`
	Status      *string          `json:"status" validate:"omitempty,oneof=pending processed paid"`
	Remarks     *string          `json:"remarks" validate:"omitempty,max=500"`
}

type GenerateDTO struct {
	Month int `json:"month" validate:"min=1,max=12"`
	Year  int `json:"year" validate:"min=2000,max=2100"`
}

// ListQuery filters GET /payroll; each field applies on its own.
type ListQuery struct {
	UserID *int64
	Month  *int
	Year   *int
	Status string
}

type GenerateError struct {
	Employee string `json:"employee"`
	Error    string `json:"error"`
}

type GenerateResult struct {
	Generated    int             `json:"generated"`
	Errors       int             `json:"errors"`
	ErrorDetails []GenerateError `json:"errorDetails"`
}
