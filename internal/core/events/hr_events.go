package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeLeaveStatusChanged = "leave.status_changed"
	EventTypePayrollPaid        = "payroll.paid"
)

type LeaveStatusChangedEvent struct {
	BaseEvent
	LeaveID      int64     `json:"leaveId"`
	UserID       int64     `json:"userId"`
	LeaveType    string    `json:"leaveType"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	Status       string    `json:"status"`
	AdminComment string    `json:"adminComment,omitempty"`
	DecidedBy    int64     `json:"decidedBy"`
}

func NewLeaveStatusChangedEvent(leaveID, userID int64, leaveType string, start, end time.Time, status, comment string, decidedBy int64) *LeaveStatusChangedEvent {
	return &LeaveStatusChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeLeaveStatusChanged,
			Timestamp: time.Now(),
		},
		LeaveID:      leaveID,
		UserID:       userID,
		LeaveType:    leaveType,
		StartDate:    start,
		EndDate:      end,
		Status:       status,
		AdminComment: comment,
		DecidedBy:    decidedBy,
	}
}

type PayrollPaidEvent struct {
	BaseEvent
	PayrollID int64     `json:"payrollId"`
	UserID    int64     `json:"userId"`
	Month     int       `json:"month"`
	Year      int       `json:"year"`
	NetSalary float64   `json:"netSalary"`
	PaidOn    time.Time `json:"paidOn"`
}

func NewPayrollPaidEvent(payrollID, userID int64, month, year int, net float64, paidOn time.Time) *PayrollPaidEvent {
	return &PayrollPaidEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePayrollPaid,
			Timestamp: time.Now(),
		},
		PayrollID: payrollID,
		UserID:    userID,
		Month:     month,
		Year:      year,
		NetSalary: net,
		PaidOn:    paidOn,
	}
}
