package model

// Role distinguishes administrators from students.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleStudent
}

// User is the identity carried by a session and returned at login.
// For students, ID is the student record's ID.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

// LoginRequest is the payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,max=128"`
}

// LoginResponse is returned after successful authentication.
type LoginResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// RegisterRequest is the student self-registration payload.
type RegisterRequest struct {
	RollNumber    string  `json:"roll_number" binding:"required,max=50"`
	Name          string  `json:"name" binding:"required,min=2,max=100"`
	Email         string  `json:"email" binding:"required,email,max=255"`
	Password      string  `json:"password" binding:"required,min=6,max=128"`
	Class         string  `json:"class" binding:"required,max=50"`
	Phone         *string `json:"phone" binding:"omitempty,max=20"`
	GuardianName  *string `json:"guardian_name" binding:"omitempty,max=100"`
	GuardianPhone *string `json:"guardian_phone" binding:"omitempty,max=20"`
}

// RegisterResponse acknowledges a pending registration.
type RegisterResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// RegistrationPending is the status of a self-registered, unapproved student.
const RegistrationPending = "pending"
