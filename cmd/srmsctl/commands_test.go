package main

import (
	"testing"

	"github.com/stemsi/srms/internal/model"
)

func TestParseDrafts(t *testing.T) {
	for name, raw := range map[string]string{
		"array":   `[{"student_id":"s1","course_id":"c1","marks":71,"exam_date":"2024-03-01","exam_type":"Midterm"}]`,
		"wrapped": `{"results":[{"student_id":"s1","course_id":"c1","marks":71,"exam_date":"2024-03-01","exam_type":"Midterm"}]}`,
	} {
		drafts, err := parseDrafts([]byte(raw))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if len(drafts) != 1 || drafts[0].Marks == nil || *drafts[0].Marks != 71 {
			t.Errorf("%s: drafts = %+v", name, drafts)
		}
	}

	if _, err := parseDrafts([]byte(`not json`)); err == nil {
		t.Error("expected an error for invalid JSON")
	}
}

func TestResolveRefs(t *testing.T) {
	students := []model.StudentOption{{ID: "id-1", RollNumber: "2024001"}}
	courses := []model.CourseOption{{ID: "id-9", CourseCode: "MATH101"}}

	if id, ok := resolveStudent(students, "2024001"); !ok || id != "id-1" {
		t.Errorf("resolveStudent(roll) = %q, %v", id, ok)
	}
	if id, ok := resolveStudent(students, "id-1"); !ok || id != "id-1" {
		t.Errorf("resolveStudent(id) = %q, %v", id, ok)
	}
	if _, ok := resolveStudent(students, "nope"); ok {
		t.Error("resolveStudent matched an unknown ref")
	}
	if id, ok := resolveCourse(courses, "math101"); !ok || id != "id-9" {
		t.Errorf("resolveCourse(code) = %q, %v", id, ok)
	}
}
