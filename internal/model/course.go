package model

import "time"

// Course represents a course that results are recorded against.
type Course struct {
	ID          string     `json:"id"`
	CourseName  string     `json:"course_name"`
	CourseCode  string     `json:"course_code"`
	Description *string    `json:"description,omitempty"`
	Credits     int        `json:"credits"`
	Semester    string     `json:"semester"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

func (c Course) Field(key string) any {
	switch key {
	case "id":
		return c.ID
	case "course_name":
		return c.CourseName
	case "course_code":
		return c.CourseCode
	case "description":
		return deref(c.Description)
	case "credits":
		return c.Credits
	case "semester":
		return c.Semester
	case "is_active":
		return c.IsActive
	case "created_at":
		return c.CreatedAt
	}
	return nil
}

func (c Course) Fields() []any {
	return []any{c.ID, c.CourseName, c.CourseCode, deref(c.Description), c.Credits, c.Semester, c.IsActive, c.CreatedAt}
}

// CourseRequest is the payload for creating or updating a course.
type CourseRequest struct {
	CourseName  string  `json:"course_name" binding:"required,min=2,max=150"`
	CourseCode  string  `json:"course_code" binding:"required,max=20"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	Credits     int     `json:"credits" binding:"required,min=1,max=10"`
	Semester    string  `json:"semester" binding:"required,max=20"`
}

// CourseFilter narrows GET /courses.
type CourseFilter struct {
	Search string `form:"search" binding:"omitempty,max=100"`
	Page
}

// CourseOption is a compact course entry for select inputs.
type CourseOption struct {
	ID         string `json:"id"`
	CourseName string `json:"course_name"`
	CourseCode string `json:"course_code"`
}

func (o CourseOption) Field(key string) any {
	switch key {
	case "id":
		return o.ID
	case "course_name":
		return o.CourseName
	case "course_code":
		return o.CourseCode
	}
	return nil
}

func (o CourseOption) Fields() []any { return []any{o.ID, o.CourseName, o.CourseCode} }
