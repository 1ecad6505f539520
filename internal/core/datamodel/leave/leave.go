package leave

import (
	"time"

	userDatamodel "github.com/frahmantamala/dayflow/internal/core/datamodel/user"
)

type Leave struct {
	ID           int64     `gorm:"primaryKey"`
	UserID       int64     `gorm:"column:user_id;not null;index"`
	LeaveType    string    `gorm:"column:leave_type;not null"`
	StartDate    time.Time `gorm:"column:start_date;not null"`
	EndDate      time.Time `gorm:"column:end_date;not null"`
	Reason       string    `gorm:"column:reason;not null"`
	Status       string    `gorm:"column:status;not null;index"`
	AdminComment string    `gorm:"column:admin_comment"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`

	User *userDatamodel.User `gorm:"foreignKey:UserID"`
}

func (Leave) TableName() string {
	return "leaves"
}
