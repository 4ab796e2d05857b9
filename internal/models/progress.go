package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserProgress is created on enrollment; one per (user, course).
type UserProgress struct {
	ID               primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID           primitive.ObjectID `json:"user_id" bson:"user_id"`
	CourseID         primitive.ObjectID `json:"course_id" bson:"course_id"`
	CompletedLessons []string           `json:"completed_lessons" bson:"completed_lessons"`
	CurrentLessonID  string             `json:"current_lesson_id,omitempty" bson:"current_lesson_id,omitempty"`
	Progress         float64            `json:"progress" bson:"progress"`
	EnrolledAt       time.Time          `json:"enrolled_at" bson:"enrolled_at"`
	LastAccessedAt   time.Time          `json:"last_accessed_at" bson:"last_accessed_at"`
	CompletedAt      *time.Time         `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
}

// Recalculate derives Progress and CompletedAt from the completed set,
// counting only ids that still exist in lessonIDs.
func (p *UserProgress) Recalculate(lessonIDs []string, now time.Time) {
	if len(lessonIDs) == 0 {
		p.Progress = 0
		p.CompletedAt = nil
		return
	}
	done := make(map[string]struct{}, len(p.CompletedLessons))
	for _, id := range p.CompletedLessons {
		done[id] = struct{}{}
	}
	n := 0
	for _, id := range lessonIDs {
		if _, ok := done[id]; ok {
			n++
		}
	}
	p.Progress = float64(n) / float64(len(lessonIDs))
	if n == len(lessonIDs) {
		if p.CompletedAt == nil {
			t := now
			p.CompletedAt = &t
		}
		return
	}
	p.CompletedAt = nil
}

// Enrollment joins a progress document with its course card.
type Enrollment struct {
	Progress UserProgress  `json:"progress"`
	Course   CourseSummary `json:"course"`
}
