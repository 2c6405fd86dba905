package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Exam is a composed exam. Questions keep the order they were selected in.
type Exam struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	StartDate   time.Time   `json:"start_date"`
	EndDate     time.Time   `json:"end_date"`
	TimeToSolve TimeToSolve `json:"time_to_solve"`
	Questions   []Question  `json:"questions"`
	CreatorID   int64       `json:"creator"`
	CreatedAt   time.Time   `json:"created_at"`
}

// ExamSummary is an exam row without its questions.
type ExamSummary struct {
	ID            uuid.UUID   `json:"id"`
	Name          string      `json:"name"`
	StartDate     time.Time   `json:"start_date"`
	EndDate       time.Time   `json:"end_date"`
	TimeToSolve   TimeToSolve `json:"time_to_solve"`
	QuestionCount int         `json:"question_count"`
	CreatedAt     time.Time   `json:"created_at"`
}

// TimeToSolve is the time a student has to finish the exam.
type TimeToSolve struct {
	Hours   int `json:"hours" binding:"min=0,max=24"`
	Minutes int `json:"minutes" binding:"min=0,max=59"`
}

// TotalMinutes converts t to minutes.
func (t TimeToSolve) TotalMinutes() int {
	return t.Hours*60 + t.Minutes
}

// TimeToSolveFromMinutes is the inverse of TotalMinutes.
func TimeToSolveFromMinutes(m int) TimeToSolve {
	return TimeToSolve{Hours: m / 60, Minutes: m % 60}
}

// PointQuotas maps a point value (1..5) to the number of questions
// requested for it. Index 0 holds the quota for 1-point questions.
type PointQuotas [MaxPoints]int

// Quota returns the quota for the given point value, or 0 when out of range.
func (q PointQuotas) Quota(points int) int {
	if points < MinPoints || points > MaxPoints {
		return 0
	}
	return q[points-MinPoints]
}

// Set assigns the quota for a point value. Out of range values are ignored.
func (q *PointQuotas) Set(points, n int) {
	if points < MinPoints || points > MaxPoints {
		return
	}
	q[points-MinPoints] = n
}

// Total is the number of questions the quotas ask for.
func (q PointQuotas) Total() int {
	total := 0
	for _, n := range q {
		total += n
	}
	return total
}

// ThemeFilter requests, for one theme, a number of questions per point value.
//
// On the wire the quotas sit next to the theme under the keys "1".."5":
//
//	{"theme": {"id": 1}, "1": 2, "2": 0, "3": 0, "4": 0, "5": 1}
type ThemeFilter struct {
	Theme  ThemeRef    `json:"-"`
	Quotas PointQuotas `json:"-" binding:"dive,min=0,max=1000"`
}

// UnmarshalJSON decodes the flat theme + "1".."5" layout.
func (f *ThemeFilter) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*f = ThemeFilter{}
	if t, ok := raw["theme"]; ok && string(t) != "null" {
		if err := json.Unmarshal(t, &f.Theme); err != nil {
			return fmt.Errorf("theme: %w", err)
		}
	}

	for p := MinPoints; p <= MaxPoints; p++ {
		v, ok := raw[strconv.Itoa(p)]
		if !ok || string(v) == "null" {
			continue
		}
		var n int
		if err := json.Unmarshal(v, &n); err != nil {
			return fmt.Errorf("quota for %d points: %w", p, err)
		}
		f.Quotas.Set(p, n)
	}
	return nil
}

// MarshalJSON encodes f in the same flat layout UnmarshalJSON accepts.
func (f ThemeFilter) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, MaxPoints+1)
	out["theme"] = f.Theme
	for p := MinPoints; p <= MaxPoints; p++ {
		out[strconv.Itoa(p)] = f.Quotas.Quota(p)
	}
	return json.Marshal(out)
}

// ExamCreationFilter groups theme filters. It is transient input only.
type ExamCreationFilter struct {
	ThemeFilters []ThemeFilter `json:"theme_filters" binding:"dive"`
}

// UnmarshalJSON also accepts the camelCase "themeFilters" key sent by
// older clients. "theme_filters" wins when both are present.
func (f *ExamCreationFilter) UnmarshalJSON(data []byte) error {
	var raw struct {
		ThemeFilters      []ThemeFilter `json:"theme_filters"`
		ThemeFiltersCamel []ThemeFilter `json:"themeFilters"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	f.ThemeFilters = raw.ThemeFilters
	if f.ThemeFilters == nil {
		f.ThemeFilters = raw.ThemeFiltersCamel
	}
	return nil
}

// CreateExamRequest is the payload for composing a new exam.
type CreateExamRequest struct {
	Name        string               `json:"name" binding:"required,min=1,max=255"`
	StartDate   time.Time            `json:"start_date" binding:"required"`
	EndDate     time.Time            `json:"end_date" binding:"required,gtfield=StartDate"`
	TimeToSolve TimeToSolve          `json:"time_to_solve"`
	Filters     []ExamCreationFilter `json:"filters" binding:"dive"`
}

// StrippedExam is an exam safe to send to a solving student: no answer
// carries its correctness.
type StrippedExam struct {
	ID          uuid.UUID          `json:"id"`
	Name        string             `json:"name"`
	StartDate   time.Time          `json:"start_date"`
	EndDate     time.Time          `json:"end_date"`
	TimeToSolve TimeToSolve        `json:"time_to_solve"`
	Questions   []StrippedQuestion `json:"questions"`
}

// StrippedQuestion is a question without answer correctness.
type StrippedQuestion struct {
	ID      int64            `json:"id"`
	Text    string           `json:"text"`
	Points  int              `json:"points"`
	Theme   ThemeRef         `json:"theme"`
	Answers []StrippedAnswer `json:"answers"`
	Media   []QuestionMedia  `json:"media"`
}

// StrippedAnswer is an answer option as shown to students.
type StrippedAnswer struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

// Strip drops everything that would leak correct answers.
func (e *Exam) Strip() *StrippedExam {
	questions := make([]StrippedQuestion, len(e.Questions))
	for i, q := range e.Questions {
		answers := make([]StrippedAnswer, len(q.Answers))
		for j, a := range q.Answers {
			answers[j] = StrippedAnswer{ID: a.ID, Text: a.Text}
		}
		media := q.Media
		if media == nil {
			media = []QuestionMedia{}
		}
		questions[i] = StrippedQuestion{
			ID:      q.ID,
			Text:    q.Text,
			Points:  q.Points,
			Theme:   q.Theme,
			Answers: answers,
			Media:   media,
		}
	}

	return &StrippedExam{
		ID:          e.ID,
		Name:        e.Name,
		StartDate:   e.StartDate,
		EndDate:     e.EndDate,
		TimeToSolve: e.TimeToSolve,
		Questions:   questions,
	}
}
