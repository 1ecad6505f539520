package user

import (
	"strings"
	"time"

	"github.com/frahmantamala/dayflow/internal"
	"github.com/frahmantamala/dayflow/internal/core/datamodel/compensation"
	userDatamodel "github.com/frahmantamala/dayflow/internal/core/datamodel/user"
	"github.com/frahmantamala/dayflow/internal/core/role"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type User struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	Role            role.Role       `json:"role"`
	EmployeeID      string          `json:"employeeId,omitempty"`
	Department      string          `json:"department,omitempty"`
	Designation     string          `json:"designation,omitempty"`
	Status          string          `json:"status"`
	Phone           string          `json:"phone,omitempty"`
	Address         string          `json:"address,omitempty"`
	ProfileImage    string          `json:"profileImage,omitempty"`
	SalaryStructure SalaryStructure `json:"salaryStructure"`
	LeaveBalance    LeaveBalance    `json:"leaveBalance"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`

	PasswordHash      string     `json:"-"`
	ResetOTPHash      *string    `json:"-"`
	ResetOTPExpiresAt *time.Time `json:"-"`
}

type SalaryStructure struct {
	Basic      float64                 `json:"basic"`
	Allowances compensation.Allowances `json:"allowances"`
	Deductions compensation.Deductions `json:"deductions"`
}

// LeaveBalance holds the remaining days per leave type.
type LeaveBalance struct {
	Paid   int `json:"paid"`
	Sick   int `json:"sick"`
	Casual int `json:"casual"`
	Unpaid int `json:"unpaid"`
}

func DefaultLeaveBalance() LeaveBalance {
	return LeaveBalance{Paid: 12, Sick: 10, Casual: 8, Unpaid: 0}
}

// Summary is the slice of a user embedded in attendance, leave and payroll
// listings.
type Summary struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	EmployeeID  string `json:"employeeId,omitempty"`
	Department  string `json:"department,omitempty"`
	Designation string `json:"designation,omitempty"`
}

// ProfileUpdate carries the self-service fields; nil means unchanged.
type ProfileUpdate struct {
	Name        *string
	Email       *string
	Department  *string
	Designation *string
	Phone       *string
	Address     *string
}

func (p ProfileUpdate) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Department == nil &&
		p.Designation == nil && p.Phone == nil && p.Address == nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

func (u *User) ToCurrentUser() *internal.CurrentUser {
	return &internal.CurrentUser{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		EmployeeID: u.EmployeeID,
		Role:       u.Role,
	}
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         u.Role.String(),
		EmployeeID:   u.EmployeeID,
		Department:   u.Department,
		Designation:  u.Designation,
		Status:       u.Status,
		Phone:        u.Phone,
		Address:      u.Address,
		ProfileImage: u.ProfileImage,
		BasicSalary:  u.SalaryStructure.Basic,
		Allowances:   u.SalaryStructure.Allowances,
		Deductions:   u.SalaryStructure.Deductions,
		LeaveBalance: userDatamodel.LeaveBalance{
			Paid:   u.LeaveBalance.Paid,
			Sick:   u.LeaveBalance.Sick,
			Casual: u.LeaveBalance.Casual,
			Unpaid: u.LeaveBalance.Unpaid,
		},
		ResetOTPHash:      u.ResetOTPHash,
		ResetOTPExpiresAt: u.ResetOTPExpiresAt,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

func FromDataModel(m *userDatamodel.User) *User {
	return &User{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		Role:         role.Role(m.Role),
		EmployeeID:   m.EmployeeID,
		Department:   m.Department,
		Designation:  m.Designation,
		Status:       m.Status,
		Phone:        m.Phone,
		Address:      m.Address,
		ProfileImage: m.ProfileImage,
		SalaryStructure: SalaryStructure{
			Basic:      m.BasicSalary,
			Allowances: m.Allowances,
			Deductions: m.Deductions,
		},
		LeaveBalance: LeaveBalance{
			Paid:   m.LeaveBalance.Paid,
			Sick:   m.LeaveBalance.Sick,
			Casual: m.LeaveBalance.Casual,
			Unpaid: m.LeaveBalance.Unpaid,
		},
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
		PasswordHash:      m.PasswordHash,
		ResetOTPHash:      m.ResetOTPHash,
		ResetOTPExpiresAt: m.ResetOTPExpiresAt,
	}
}

func FromDataModelSlice(rows []*userDatamodel.User) []*User {
	result := make([]*User, len(rows))
	for i, r := range rows {
		result[i] = FromDataModel(r)
	}
	return result
}

// SummaryFromDataModel returns nil when the association was not loaded.
func SummaryFromDataModel(m *userDatamodel.User) *Summary {
	if m == nil || m.ID == 0 {
		return nil
	}
	return &Summary{
		ID:          m.ID,
		Name:        m.Name,
		Email:       m.Email,
		EmployeeID:  m.EmployeeID,
		Department:  m.Department,
		Designation: m.Designation,
	}
}
