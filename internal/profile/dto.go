package profile

import (
	"strings"

	"github.com/frahmantamala/dayflow/internal/user"
)

type UpdateProfileDTO struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Department  *string `json:"department" validate:"omitempty,max=100"`
	Designation *string `json:"designation" validate:"omitempty,max=100"`
	Phone       *string `json:"phone" validate:"omitempty,max=30"`
	Address     *string `json:"address" validate:"omitempty,max=300"`
}

// normalize trims every field and drops empty ones, which mean unchanged.
func (d UpdateProfileDTO) normalize() UpdateProfileDTO {
	n := UpdateProfileDTO{
		Name:        nonEmpty(d.Name),
		Email:       nonEmpty(d.Email),
		Department:  nonEmpty(d.Department),
		Designation: nonEmpty(d.Designation),
		Phone:       nonEmpty(d.Phone),
		Address:     nonEmpty(d.Address),
	}
	if n.Email != nil {
		email := user.NormalizeEmail(*n.Email)
		n.Email = &email
	}
	return n
}

func (d UpdateProfileDTO) toUpdate() user.ProfileUpdate {
	return user.ProfileUpdate{
		Name:        d.Name,
		Email:       d.Email,
		Department:  d.Department,
		Designation: d.Designation,
		Phone:       d.Phone,
		Address:     d.Address,
	}
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

type PictureResponse struct {
	ProfileImage string `json:"profileImage"`
}
