package attendance

type CheckInDTO struct {
	Location string `json:"location" validate:"max=100"`
}

type UpdateAttendanceDTO struct {
	Status     *string `json:"status" validate:"omitempty,oneof=present absent leave half-day"`
	Remarks    *string `json:"remarks" validate:"omitempty,max=500"`
	IsApproved *bool   `json:"isApproved"`
}

// ListQuery filters GET /attendance. Month and year only apply together.
type ListQuery struct {
	UserID *int64
	Month  *int
	Year   *int
	Status string
}
