package dto

import "time"

// SignUpRequest entrada para registro (password en texto, se hashea en use case).
type SignUpRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	FullName        string `json:"full_name" validate:"required,min=1,max=200"`
	Department      string `json:"department" validate:"required,oneof=Procurement Finance Logistics Warehouse Management IT"`
	Role            string `json:"role" validate:"omitempty,oneof=Requester Approver Finance Admin"`
}

// SignInRequest entrada para inicio de sesión.
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest auto-edición del perfil. El rol no es editable.
type UpdateProfileRequest struct {
	FullName   *string `json:"full_name" validate:"omitempty,min=1,max=200"`
	Department *string `json:"department" validate:"omitempty,oneof=Procurement Finance Logistics Warehouse Management IT"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"full_name"`
	Department string    `json:"department"`
	Role       string    `json:"role"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// AuthResponse salida de sign-up / sign-in con el token JWT.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// ApproverResponse opción para asignar aprobador en el formulario de documentos.
type ApproverResponse struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}
