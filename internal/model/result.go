package model

import "time"

// Result is a single exam outcome of a student in a course.
// StudentName, RollNumber, CourseName, CourseCode and Credits are joined at read time.
type Result struct {
	ID         string     `json:"id"`
	StudentID  string     `json:"student_id"`
	CourseID   string     `json:"course_id"`
	Marks      float64    `json:"marks"`
	Grade      string     `json:"grade"`
	Percentage float64    `json:"percentage"`
	ExamDate   string     `json:"exam_date"`
	ExamType   string     `json:"exam_type"`
	Remarks    *string    `json:"remarks,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`

	StudentName string `json:"student_name,omitempty"`
	RollNumber  string `json:"roll_number,omitempty"`
	CourseName  string `json:"course_name,omitempty"`
	CourseCode  string `json:"course_code,omitempty"`
	Credits     int    `json:"credits,omitempty"`
}

func (r Result) Field(key string) any {
	switch key {
	case "id":
		return r.ID
	case "student_id":
		return r.StudentID
	case "course_id":
		return r.CourseID
	case "marks":
		return r.Marks
	case "grade":
		return r.Grade
	case "percentage":
		return r.Percentage
	case "exam_date":
		return r.ExamDate
	case "exam_type":
		return r.ExamType
	case "remarks":
		return deref(r.Remarks)
	case "created_at":
		return r.CreatedAt
	case "student_name":
		return r.StudentName
	case "roll_number":
		return r.RollNumber
	case "course_name":
		return r.CourseName
	case "course_code":
		return r.CourseCode
	case "credits":
		return r.Credits
	}
	return nil
}

func (r Result) Fields() []any {
	return []any{
		r.ID, r.StudentID, r.CourseID, r.Marks, r.Grade, r.Percentage,
		r.ExamDate, r.ExamType, deref(r.Remarks), r.CreatedAt,
		r.StudentName, r.RollNumber, r.CourseName, r.CourseCode,
	}
}

// ResultRequest is the payload for creating or updating a result.
// Marks is a pointer so that a legitimate 0 passes the required check.
type ResultRequest struct {
	StudentID string   `json:"student_id" binding:"required,uuid"`
	CourseID  string   `json:"course_id" binding:"required,uuid"`
	Marks     *float64 `json:"marks" binding:"required,gte=0,lte=100"`
	ExamDate  string   `json:"exam_date" binding:"required,datetime=2006-01-02"`
	ExamType  string   `json:"exam_type" binding:"required,max=50"`
	Remarks   *string  `json:"remarks" binding:"omitempty,max=500"`
}

// ToResult builds a result with grade and percentage derived from marks.
// Marks are rounded to the two decimals the results table stores, so the
// grade always matches the persisted value.
func (req *ResultRequest) ToResult() *Result {
	var marks float64
	if req.Marks != nil {
		marks = Round2(*req.Marks)
	}
	return &Result{
		StudentID:  req.StudentID,
		CourseID:   req.CourseID,
		Marks:      marks,
		Grade:      GradeFor(marks),
		Percentage: marks,
		ExamDate:   req.ExamDate,
		ExamType:   req.ExamType,
		Remarks:    req.Remarks,
	}
}

// BulkResultRequest is the payload for POST /results/bulk.
type BulkResultRequest struct {
	Results []ResultRequest `json:"results" binding:"required,min=1,max=500,dive"`
}

// BulkResultResponse acknowledges queued drafts.
type BulkResultResponse struct {
	Queued int `json:"queued"`
}

// ResultFilter narrows GET /results.
type ResultFilter struct {
	StudentID string `form:"student_id" binding:"omitempty,uuid"`
	CourseID  string `form:"course_id" binding:"omitempty,uuid"`
	Page
}
