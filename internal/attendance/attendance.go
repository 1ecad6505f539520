package attendance

import (
	"math"
	"time"

	attendanceDatamodel "github.com/frahmantamala/dayflow/internal/core/datamodel/attendance"
	"github.com/frahmantamala/dayflow/internal/user"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLeave   Status = "leave"
	StatusHalfDay Status = "half-day"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLeave, StatusHalfDay:
		return true
	default:
		return false
	}
}

const (
	DefaultLocation = "Office"

	fullDayHours = 8
	halfDayHours = 4
)

type Attendance struct {
	ID         int64         `json:"id"`
	UserID     int64         `json:"userId"`
	User       *user.Summary `json:"user,omitempty"`
	Date       time.Time     `json:"date"`
	CheckIn    *time.Time    `json:"checkIn"`
	CheckOut   *time.Time    `json:"checkOut"`
	Status     Status        `json:"status"`
	WorkHours  float64       `json:"workHours"`
	Location   string        `json:"location"`
	Remarks    string        `json:"remarks,omitempty"`
	IsApproved bool          `json:"isApproved"`
	ApprovedBy *int64        `json:"approvedBy,omitempty"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

// ComputeWorkHours returns the hours between check-in and check-out,
// rounded to two decimals, and the status those hours earn. A full day is
// present, half a day or more is half-day; shorter days keep current.
func ComputeWorkHours(checkIn, checkOut time.Time, current Status) (float64, Status) {
	hours := checkOut.Sub(checkIn).Hours()
	rounded := math.Round(hours*100) / 100

	switch {
	case hours >= fullDayHours:
		return rounded, StatusPresent
	case hours >= halfDayHours:
		return rounded, StatusHalfDay
	default:
		return rounded, current
	}
}

// Recompute refreshes the derived fields. It is a no-op until both
// timestamps are set.
func (a *Attendance) Recompute() {
	if a.CheckIn == nil || a.CheckOut == nil {
		return
	}
	a.WorkHours, a.Status = ComputeWorkHours(*a.CheckIn, *a.CheckOut, a.Status)
}

type Stats struct {
	Total      int     `json:"total"`
	Present    int     `json:"present"`
	Absent     int     `json:"absent"`
	HalfDay    int     `json:"halfDay"`
	Leave      int     `json:"leave"`
	TotalHours float64 `json:"totalHours"`
}

func ComputeStats(records []*Attendance) Stats {
	stats := Stats{Total: len(records)}
	for _, a := range records {
		switch a.Status {
		case StatusPresent:
			stats.Present++
		case StatusAbsent:
			stats.Absent++
		case StatusHalfDay:
			stats.HalfDay++
		case StatusLeave:
			stats.Leave++
		}
		stats.TotalHours += a.WorkHours
	}
	stats.TotalHours = math.Round(stats.TotalHours*100) / 100
	return stats
}

func ToDataModel(a *Attendance) *attendanceDatamodel.Attendance {
	return &attendanceDatamodel.Attendance{
		ID:         a.ID,
		UserID:     a.UserID,
		Date:       a.Date,
		CheckIn:    a.CheckIn,
		CheckOut:   a.CheckOut,
		Status:     string(a.Status),
		WorkHours:  a.WorkHours,
		Location:   a.Location,
		Remarks:    a.Remarks,
		IsApproved: a.IsApproved,
		ApprovedBy: a.ApprovedBy,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

func FromDataModel(m *attendanceDatamodel.Attendance) *Attendance {
	return &Attendance{
		ID:         m.ID,
		UserID:     m.UserID,
		User:       user.SummaryFromDataModel(m.User),
		Date:       m.Date.UTC(),
		CheckIn:    m.CheckIn,
		CheckOut:   m.CheckOut,
		Status:     Status(m.Status),
		WorkHours:  m.WorkHours,
		Location:   m.Location,
		Remarks:    m.Remarks,
		IsApproved: m.IsApproved,
		ApprovedBy: m.ApprovedBy,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func FromDataModelSlice(rows []*attendanceDatamodel.Attendance) []*Attendance {
	result := make([]*Attendance, len(rows))
	for i, r := range rows {
		result[i] = FromDataModel(r)
	}
	return result
}
