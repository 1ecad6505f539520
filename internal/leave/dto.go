package leave

type ApplyLeaveDTO struct {
	LeaveType string `json:"leaveType" validate:"oneof=paid sick casual unpaid"`
	StartDate string `json:"startDate" validate:"day"`
	EndDate   string `json:"endDate" validate:"day"`
	Reason    string `json:"reason" validate:"max=1000"`
}

func (d ApplyLeaveDTO) missingFields() bool {
	return d.LeaveType == "" || d.StartDate == "" || d.EndDate == "" || d.Reason == ""
}

type UpdateStatusDTO struct {
	Status       string `json:"status"`
	AdminComment string `json:"adminComment" validate:"max=1000"`
}
