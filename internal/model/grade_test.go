package model

import "testing"

func TestGradeFor(t *testing.T) {
	tests := []struct {
		marks float64
		want  string
	}{
		{100, "A+"},
		{90, "A+"},
		{89.99, "A"},
		{80, "A"},
		{79.5, "B+"},
		{70, "B+"},
		{60, "B"},
		{50, "C+"},
		{40, "C"},
		{39.99, "D"},
		{33, "D"},
		{32.99, "F"},
		{0, "F"},
	}
	for _, tt := range tests {
		if got := GradeFor(tt.marks); got != tt.want {
			t.Errorf("GradeFor(%v) = %q, want %q", tt.marks, got, tt.want)
		}
	}
}

func TestPassed(t *testing.T) {
	if !Passed(40) {
		t.Error("40 should pass")
	}
	if Passed(39.99) {
		t.Error("39.99 should fail")
	}
}

func TestGPA(t *testing.T) {
	tests := []struct {
		avg  float64
		want float64
	}{
		{100, 4},
		{75, 3},
		{83.333, 3.33},
		{0, 0},
	}
	for _, tt := range tests {
		if got := GPA(tt.avg); got != tt.want {
			t.Errorf("GPA(%v) = %v, want %v", tt.avg, got, tt.want)
		}
	}
}

func TestGradeOrderCoversEveryBand(t *testing.T) {
	seen := map[string]bool{}
	for _, g := range GradeOrder {
		seen[g] = true
	}
	for _, m := range []float64{95, 85, 75, 65, 55, 45, 35, 10} {
		if !seen[GradeFor(m)] {
			t.Errorf("grade %q for %v missing from GradeOrder", GradeFor(m), m)
		}
	}
}

func TestResultRequestToResult(t *testing.T) {
	marks := 72.5
	req := &ResultRequest{StudentID: "s", CourseID: "c", Marks: &marks, ExamDate: "2024-05-01", ExamType: "final"}
	r := req.ToResult()
	if r.Grade != "B+" || r.Percentage != 72.5 || r.Marks != 72.5 {
		t.Errorf("unexpected result %+v", r)
	}
}

func TestResultRequestToResultRoundsMarks(t *testing.T) {
	tests := []struct {
		marks     float64
		wantMarks float64
		wantGrade string
	}{
		{89.995, 90, "A+"},
		{89.994, 89.99, "A"},
		{32.995, 33, "D"},
		{39.999, 40, "C"},
	}
	for _, tt := range tests {
		marks := tt.marks
		r := (&ResultRequest{Marks: &marks}).ToResult()
		if r.Marks != tt.wantMarks || r.Percentage != tt.wantMarks || r.Grade != tt.wantGrade {
			t.Errorf("ToResult(%v) = marks %v, percentage %v, grade %q; want %v, %q",
				tt.marks, r.Marks, r.Percentage, r.Grade, tt.wantMarks, tt.wantGrade)
		}
	}
}

func TestPageNormalize(t *testing.T) {
	tests := []struct {
		in   Page
		want Page
	}{
		{Page{}, Page{Limit: 50}},
		{Page{Limit: 500, Offset: 10}, Page{Limit: 100, Offset: 10}},
		{Page{Limit: 20, Offset: -3}, Page{Limit: 20}},
	}
	for _, tt := range tests {
		if got := tt.in.Normalize(); got != tt.want {
			t.Errorf("Normalize(%+v) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestStudentFieldDereferencesOptionals(t *testing.T) {
	phone := "0812"
	s := Student{Name: "Ana", Phone: &phone}
	if s.Field("phone") != "0812" {
		t.Errorf("phone = %v", s.Field("phone"))
	}
	if s.Field("address") != nil {
		t.Errorf("address = %v, want nil", s.Field("address"))
	}
	if s.Field("unknown") != nil {
		t.Error("unknown key should be nil")
	}
}
