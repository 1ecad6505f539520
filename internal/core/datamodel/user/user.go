package user

import (
	"time"

	"github.com/frahmantamala/dayflow/internal/core/datamodel/compensation"
)

type User struct {
	ID           int64  `gorm:"primaryKey"`
	Name         string `gorm:"column:name;not null"`
	Email        string `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash string `gorm:"column:password_hash;not null"`
	Role         string `gorm:"column:role;not null;index"`
	EmployeeID   string `gorm:"column:employee_id"`
	Department   string `gorm:"column:department"`
	Designation  string `gorm:"column:designation"`
	Status       string `gorm:"column:status;not null"`
	Phone        string `gorm:"column:phone"`
	Address      string `gorm:"column:address"`
	ProfileImage string `gorm:"column:profile_image"`

	BasicSalary  float64                 `gorm:"column:basic_salary;not null;default:0"`
	Allowances   compensation.Allowances `gorm:"embedded;embeddedPrefix:allowance_"`
	Deductions   compensation.Deductions `gorm:"embedded;embeddedPrefix:deduction_"`
	LeaveBalance LeaveBalance            `gorm:"embedded;embeddedPrefix:leave_balance_"`

	ResetOTPHash      *string    `gorm:"column:reset_otp_hash"`
	ResetOTPExpiresAt *time.Time `gorm:"column:reset_otp_expires_at"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// LeaveBalance columns are leave_balance_<type>; the leave repository
// decrements them by name.
type LeaveBalance struct {
	Paid   int `gorm:"column:paid;not null"`
	Sick   int `gorm:"column:sick;not null"`
	Casual int `gorm:"column:casual;not null"`
	Unpaid int `gorm:"column:unpaid;not null"`
}

func (User) TableName() string {
	return "users"
}
