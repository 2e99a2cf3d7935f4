package dto

// LoginRequest credenciales del ERP.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=60"`
	Password string `json:"password" validate:"required"`
}

// UserResponse usuario autenticado.
type UserResponse struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Name     string   `json:"name"`
	Branch   string   `json:"branch"`
	Branches []string `json:"branches"`
	Role     string   `json:"role"`
}

// LoginResponse token JWT y datos del usuario.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresIn int          `json:"expires_in"` // segundos
	User      UserResponse `json:"user"`
}
