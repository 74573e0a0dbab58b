package model

// DashboardStats is the admin dashboard aggregate.
type DashboardStats struct {
	TotalStudents     int            `json:"totalStudents"`
	TotalCourses      int            `json:"totalCourses"`
	TotalResults      int            `json:"totalResults"`
	AverageMarks      float64        `json:"averageMarks"`
	AverageGrade      string         `json:"averageGrade"`
	PassRate          float64        `json:"passRate"`
	TopPerformers     []TopPerformer `json:"topPerformers"`
	GradeDistribution []GradeBucket  `json:"gradeDistribution"`
	RecentResults     []Result       `json:"recentResults"`
}

// TopPerformer is one entry of the dashboard leaderboard.
type TopPerformer struct {
	Name         string  `json:"name"`
	RollNumber   string  `json:"roll_number"`
	AverageMarks float64 `json:"average_marks"`
	Grade        string  `json:"grade"`
}

func (t TopPerformer) Field(key string) any {
	switch key {
	case "name":
		return t.Name
	case "roll_number":
		return t.RollNumber
	case "average_marks":
		return t.AverageMarks
	case "grade":
		return t.Grade
	}
	return nil
}

func (t TopPerformer) Fields() []any {
	return []any{t.Name, t.RollNumber, t.AverageMarks, t.Grade}
}

// GradeBucket counts results in one grade band.
type GradeBucket struct {
	Grade      string  `json:"grade"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

func (g GradeBucket) Field(key string) any {
	switch key {
	case "grade":
		return g.Grade
	case "count":
		return g.Count
	case "percentage":
		return g.Percentage
	}
	return nil
}

func (g GradeBucket) Fields() []any { return []any{g.Grade, g.Count, g.Percentage} }

// StudentStatistics summarizes one student's results.
type StudentStatistics struct {
	TotalSubjects int     `json:"total_subjects"`
	AverageMarks  float64 `json:"average_marks"`
	OverallGrade  string  `json:"overall_grade"`
	GPA           float64 `json:"gpa"`
}

// CourseStatistics summarizes results recorded in one course.
type CourseStatistics struct {
	TotalStudents  int     `json:"total_students"`
	AverageMarks   float64 `json:"average_marks"`
	HighestMarks   float64 `json:"highest_marks"`
	LowestMarks    float64 `json:"lowest_marks"`
	PassedStudents int     `json:"passed_students"`
	FailedStudents int     `json:"failed_students"`
}

// FinishStudentStatistics derives grade and GPA from the raw count and average.
func FinishStudentStatistics(st *StudentStatistics) *StudentStatistics {
	if st.TotalSubjects == 0 {
		st.AverageMarks = 0
		st.OverallGrade = GradeNone
		st.GPA = 0
		return st
	}
	st.AverageMarks = Round2(st.AverageMarks)
	st.OverallGrade = GradeFor(st.AverageMarks)
	st.GPA = GPA(st.AverageMarks)
	return st
}
