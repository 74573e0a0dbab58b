package model

import "time"

// ResultEventType names a result mutation broadcast to listeners.
type ResultEventType string

const (
	ResultCreated  ResultEventType = "created"
	ResultUpdated  ResultEventType = "updated"
	ResultDeleted  ResultEventType = "deleted"
	ResultImported ResultEventType = "imported"
)

// ResultEvent is published on every result mutation. Imported events carry
// the batch size in Count and leave the IDs empty.
type ResultEvent struct {
	Event     ResultEventType `json:"event"`
	ResultID  string          `json:"result_id,omitempty"`
	StudentID string          `json:"student_id,omitempty"`
	CourseID  string          `json:"course_id,omitempty"`
	Count     int             `json:"count,omitempty"`
	At        time.Time       `json:"at"`
}
