package payroll

import (
	"time"

	"github.com/frahmantamala/dayflow/internal/core/datamodel/compensation"
	userDatamodel "github.com/frahmantamala/dayflow/internal/core/datamodel/user"
)

type Payroll struct {
	ID              int64                   `gorm:"primaryKey"`
	UserID          int64                   `gorm:"column:user_id;not null;uniqueIndex:idx_payrolls_user_period"`
	Month           int                     `gorm:"column:month;not null;uniqueIndex:idx_payrolls_user_period"`
	Year            int                     `gorm:"column:year;not null;uniqueIndex:idx_payrolls_user_period"`
	BasicSalary     float64                 `gorm:"column:basic_salary;not null"`
	Allowances      compensation.Allowances `gorm:"embedded;embeddedPrefix:allowance_"`
	Deductions      compensation.Deductions `gorm:"embedded;embeddedPrefix:deduction_"`
	TotalAllowances float64                 `gorm:"column:total_allowances;not null;default:0"`
	TotalDeductions float64                 `gorm:"column:total_deductions;not null;default:0"`
	GrossSalary     float64                 `gorm:"column:gross_salary;not null;default:0"`
	NetSalary       float64                 `gorm:"column:net_salary;not null;default:0"`
	WorkingDays     int                     `gorm:"column:working_days;not null;default:0"`
	PresentDays     int                     `gorm:"column:present_days;not null;default:0"`
	Status          string                  `gorm:"column:status;not null;index"`
	PaidOn          *time.Time              `gorm:"column:paid_on"`
	Remarks         string                  `gorm:"column:remarks"`
	CreatedAt       time.Time               `gorm:"column:created_at"`
	UpdatedAt       time.Time               `gorm:"column:updated_at"`

	User *userDatamodel.User `gorm:"foreignKey:UserID"`
}

func (Payroll) TableName() string {
	return "payrolls"
}
