package leave

import (
	"time"

	"github.com/frahmantamala/dayflow/internal/core/clock"
	leaveDatamodel "github.com/frahmantamala/dayflow/internal/core/datamodel/leave"
	"github.com/frahmantamala/dayflow/internal/user"
)

type Type string

const (
	TypePaid   Type = "paid"
	TypeSick   Type = "sick"
	TypeCasual Type = "casual"
	TypeUnpaid Type = "unpaid"
)

func (t Type) Valid() bool {
	switch t {
	case TypePaid, TypeSick, TypeCasual, TypeUnpaid:
		return true
	default:
		return false
	}
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

// IsDecision reports whether s is a status an approver may set.
func (s Status) IsDecision() bool {
	switch s {
	case StatusApproved, StatusRejected:
		return true
	case StatusPending:
		return false
	default:
		return false
	}
}

type Leave struct {
	ID           int64         `json:"id"`
	UserID       int64         `json:"userId"`
	User         *user.Summary `json:"user,omitempty"`
	LeaveType    Type          `json:"leaveType"`
	StartDate    time.Time     `json:"startDate"`
	EndDate      time.Time     `json:"endDate"`
	Reason       string        `json:"reason"`
	Status       Status        `json:"status"`
	AdminComment string        `json:"adminComment,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// Days is the number of calendar days the leave covers, both ends included.
func (l *Leave) Days() int {
	return clock.DaysInclusive(l.StartDate, l.EndDate)
}

func (l *Leave) IsPending() bool {
	return l.Status == StatusPending
}

func ToDataModel(l *Leave) *leaveDatamodel.Leave {
	return &leaveDatamodel.Leave{
		ID:           l.ID,
		UserID:       l.UserID,
		LeaveType:    string(l.LeaveType),
		StartDate:    l.StartDate,
		EndDate:      l.EndDate,
		Reason:       l.Reason,
		Status:       string(l.Status),
		AdminComment: l.AdminComment,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

func FromDataModel(m *leaveDatamodel.Leave) *Leave {
	return &Leave{
		ID:           m.ID,
		UserID:       m.UserID,
		User:         user.SummaryFromDataModel(m.User),
		LeaveType:    Type(m.LeaveType),
		StartDate:    m.StartDate.UTC(),
		EndDate:      m.EndDate.UTC(),
		Reason:       m.Reason,
		Status:       Status(m.Status),
		AdminComment: m.AdminComment,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func FromDataModelSlice(rows []*leaveDatamodel.Leave) []*Leave {
	result := make([]*Leave, len(rows))
	for i, r := range rows {
		result[i] = FromDataModel(r)
	}
	return result
}
