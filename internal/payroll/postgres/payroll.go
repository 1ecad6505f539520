package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	payrollDatamodel "github.com/frahmantamala/dayflow/internal/core/datamodel/payroll"
	"github.com/frahmantamala/dayflow/internal/payroll"
)

type PayrollRepository struct {
	db *gorm.DB
}

func NewPayrollRepository(db *gorm.DB) *PayrollRepository {
	return &PayrollRepository{db: db}
}

func (r *PayrollRepository) Create(ctx context.Context, p *payroll.Payroll) error {
	row := payroll.ToDataModel(p)
	res := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "month"}, {Name: "year"}},
			DoNothing: true,
		}).
		Create(row)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return payroll.ErrAlreadyExists
		}
		return fmt.Errorf("create payroll: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return payroll.ErrAlreadyExists
	}
	p.ID = row.ID
	p.CreatedAt = row.CreatedAt
	p.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *PayrollRepository) GetByID(ctx context.Context, id int64) (*payroll.Payroll, error) {
	var row payrollDatamodel.Payroll
	if err := r.db.WithContext(ctx).Preload("User").First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payroll.ErrNotFound
		}
		return nil, fmt.Errorf("get payroll %d: %w", id, err)
	}
	return payroll.FromDataModel(&row), nil
}

func (r *PayrollRepository) List(ctx context.Context, f payroll.Filter) ([]*payroll.Payroll, error) {
	q := r.db.WithContext(ctx).Preload("User")
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.Month != nil {
		q = q.Where("month = ?", *f.Month)
	}
	if f.Year != nil {
		q = q.Where("year = ?", *f.Year)
	}
	if f.Status != nil {
		q = q.Where("status = ?", string(*f.Status))
	}

	var rows []*payrollDatamodel.Payroll
	if err := q.Order("year DESC").Order("month DESC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list payroll: %w", err)
	}
	return payroll.FromDataModelSlice(rows), nil
}

func (r *PayrollRepository) Update(ctx context.Context, p *payroll.Payroll) error {
	res := r.db.WithContext(ctx).
		Model(&payrollDatamodel.Payroll{}).
		Where("id = ?", p.ID).
		Updates(map[string]interface{}{
			"basic_salary":        p.BasicSalary,
			"allowance_hra":       p.Allowances.HRA,
			"allowance_transport": p.Allowances.Transport,
			"allowance_medical":   p.Allowances.Medical,
			"allowance_other":     p.Allowances.Other,
			"deduction_tax":       p.Deductions.Tax,
			"deduction_pf":        p.Deductions.PF,
			"deduction_insurance": p.Deductions.Insurance,
			"deduction_other":     p.Deductions.Other,
			"total_allowances":    p.TotalAllowances,
			"total_deductions":    p.TotalDeductions,
			"gross_salary":        p.GrossSalary,
			"net_salary":          p.NetSalary,
			"working_days":        p.WorkingDays,
			"present_days":        p.PresentDays,
			"status":              string(p.Status),
			"paid_on":             p.PaidOn,
			"remarks":             p.Remarks,
		})
	if res.Error != nil {
		return fmt.Errorf("update payroll %d: %w", p.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return payroll.ErrNotFound
	}
	return nil
}

func (r *PayrollRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&payrollDatamodel.Payroll{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete payroll %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return payroll.ErrNotFound
	}
	return nil
}
