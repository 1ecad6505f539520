package attendance

import (
	"time"

	userDatamodel "github.com/frahmantamala/dayflow/internal/core/datamodel/user"
)

type Attendance struct {
	ID         int64      `gorm:"primaryKey"`
	UserID     int64      `gorm:"column:user_id;not null;uniqueIndex:idx_attendances_user_date"`
	Date       time.Time  `gorm:"column:date;not null;uniqueIndex:idx_attendances_user_date"`
	CheckIn    *time.Time `gorm:"column:check_in"`
	CheckOut   *time.Time `gorm:"column:check_out"`
	Status     string     `gorm:"column:status;not null"`
	WorkHours  float64    `gorm:"column:work_hours;not null;default:0"`
	Location   string     `gorm:"column:location"`
	Remarks    string     `gorm:"column:remarks"`
	IsApproved bool       `gorm:"column:is_approved;not null;default:false"`
	ApprovedBy *int64     `gorm:"column:approved_by"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at"`

	User *userDatamodel.User `gorm:"foreignKey:UserID"`
}

func (Attendance) TableName() string {
	return "attendances"
}
