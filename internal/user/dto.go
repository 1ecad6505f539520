package user

// DashboardStats feeds the employee dashboard cards and the weekly chart.
type DashboardStats struct {
	Attendance     string          `json:"attendance"`
	PendingLeaves  int             `json:"pendingLeaves"`
	Payslips       int             `json:"payslips"`
	AttendanceData []DayAttendance `json:"attendanceData"`
}

type DayAttendance struct {
	Name    string `json:"name"`
	Date    string `json:"date"`
	Present int    `json:"present"`
	Absent  int    `json:"absent"`
	HalfDay int    `json:"halfDay"`
	Leave   int    `json:"leave"`
}
