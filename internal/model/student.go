package model

import "time"

// Student represents a student record. A student is also a login identity.
type Student struct {
	ID             string     `json:"id"`
	RollNumber     string     `json:"roll_number"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	PasswordHash   string     `json:"-"`
	Class          string     `json:"class"`
	DateOfBirth    *string    `json:"date_of_birth,omitempty"`
	Phone          *string    `json:"phone,omitempty"`
	Address        *string    `json:"address,omitempty"`
	GuardianName   *string    `json:"guardian_name,omitempty"`
	GuardianPhone  *string    `json:"guardian_phone,omitempty"`
	EnrollmentDate *string    `json:"enrollment_date,omitempty"`
	IsActive       bool       `json:"is_active"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

// User returns the student as a session identity.
func (s *Student) User() User {
	return User{ID: s.ID, Email: s.Email, Name: s.Name, Role: RoleStudent}
}

// Field returns the value of the column named by its JSON key.
func (s Student) Field(key string) any {
	switch key {
	case "id":
		return s.ID
	case "roll_number":
		return s.RollNumber
	case "name":
		return s.Name
	case "email":
		return s.Email
	case "class":
		return s.Class
	case "date_of_birth":
		return deref(s.DateOfBirth)
	case "phone":
		return deref(s.Phone)
	case "address":
		return deref(s.Address)
	case "guardian_name":
		return deref(s.GuardianName)
	case "guardian_phone":
		return deref(s.GuardianPhone)
	case "enrollment_date":
		return deref(s.EnrollmentDate)
	case "is_active":
		return s.IsActive
	case "created_at":
		return s.CreatedAt
	}
	return nil
}

// Fields returns every searchable value of the record.
func (s Student) Fields() []any {
	return []any{
		s.ID, s.RollNumber, s.Name, s.Email, s.Class,
		deref(s.DateOfBirth), deref(s.Phone), deref(s.Address),
		deref(s.GuardianName), deref(s.GuardianPhone), deref(s.EnrollmentDate),
		s.IsActive, s.CreatedAt,
	}
}

// CreateStudentRequest is the payload for creating a student account.
type CreateStudentRequest struct {
	RollNumber     string  `json:"roll_number" binding:"required,max=50"`
	Name           string  `json:"name" binding:"required,min=2,max=100"`
	Email          string  `json:"email" binding:"required,email,max=255"`
	Password       string  `json:"password" binding:"required,min=6,max=128"`
	Class          string  `json:"class" binding:"required,max=50"`
	DateOfBirth    *string `json:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`
	Phone          *string `json:"phone" binding:"omitempty,max=20"`
	Address        *string `json:"address" binding:"omitempty,max=500"`
	GuardianName   *string `json:"guardian_name" binding:"omitempty,max=100"`
	GuardianPhone  *string `json:"guardian_phone" binding:"omitempty,max=20"`
	EnrollmentDate *string `json:"enrollment_date" binding:"omitempty,datetime=2006-01-02"`
}

// UpdateStudentRequest is the payload for updating a student profile.
// Password is optional; an empty value leaves the stored hash untouched.
type UpdateStudentRequest struct {
	Name          string  `json:"name" binding:"required,min=2,max=100"`
	Email         string  `json:"email" binding:"required,email,max=255"`
	Class         string  `json:"class" binding:"required,max=50"`
	Password      string  `json:"password" binding:"omitempty,min=6,max=128"`
	DateOfBirth   *string `json:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`
	Phone         *string `json:"phone" binding:"omitempty,max=20"`
	Address       *string `json:"address" binding:"omitempty,max=500"`
	GuardianName  *string `json:"guardian_name" binding:"omitempty,max=100"`
	GuardianPhone *string `json:"guardian_phone" binding:"omitempty,max=20"`
}

// StudentFilter narrows GET /students.
type StudentFilter struct {
	Class  string `form:"class" binding:"omitempty,max=50"`
	Search string `form:"search" binding:"omitempty,max=100"`
	Page
}

// StudentOption is a compact student entry for select inputs.
type StudentOption struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	RollNumber string `json:"roll_number"`
}

func (o StudentOption) Field(key string) any {
	switch key {
	case "id":
		return o.ID
	case "name":
		return o.Name
	case "roll_number":
		return o.RollNumber
	}
	return nil
}

func (o StudentOption) Fields() []any { return []any{o.ID, o.Name, o.RollNumber} }

func deref(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
