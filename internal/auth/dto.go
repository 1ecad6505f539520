package auth

type RegisterDTO struct {
	Name        string `json:"name" validate:"required,max=100"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6,max=72"`
	Role        string `json:"role" validate:"omitempty,oneof=employee hr admin"`
	EmployeeID  string `json:"employeeId"`
	Department  string `json:"department"`
	Designation string `json:"designation"`
}

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordDTO struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordDTO struct {
	Email    string `json:"email"`
	OTP      string `json:"otp"`
	Password string `json:"password" validate:"omitempty,min=6,max=72"`
}
