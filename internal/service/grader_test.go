package service

import (
	"testing"

	"github.com/stemsi/exbank-backend/internal/model"
)

func gradedExam() *model.Exam {
	return &model.Exam{Questions: []model.Question{
		bankQuestion(1, nil, 1),
		bankQuestion(2, nil, 4),
	}}
}

func TestGradeLastAnswerWins(t *testing.T) {
	grade, answers := Grade(gradedExam(), []model.AnsweredQuestion{
		{QuestionID: 1, AnswerID: 11},
		{QuestionID: 1, AnswerID: 12},
		{QuestionID: 2, AnswerID: 22},
		{QuestionID: 2, AnswerID: 21},
	})

	if grade.Points != 4 || grade.Correct != 1 || grade.MaxPoints != 5 {
		t.Fatalf("unexpected grade: %+v", grade)
	}
	if answers[0].Correct || !answers[1].Correct {
		t.Errorf("unexpected answers: %+v", answers)
	}
	if *answers[0].AnswerID != 12 {
		t.Errorf("question 1 answer = %d, want 12", *answers[0].AnswerID)
	}
}

func TestGradeIgnoresForeignAnswers(t *testing.T) {
	grade, answers := Grade(gradedExam(), []model.AnsweredQuestion{
		{QuestionID: 99, AnswerID: 991},
		// Correct answer of question 2 submitted for question 1.
		{QuestionID: 1, AnswerID: 21},
	})

	if grade.Points != 0 || grade.Correct != 0 {
		t.Fatalf("unexpected grade: %+v", grade)
	}
	if answers[1].AnswerID != nil {
		t.Errorf("unanswered question has an answer: %v", *answers[1].AnswerID)
	}
}

func TestGradeEmptyExam(t *testing.T) {
	grade, answers := Grade(&model.Exam{}, nil)
	if grade.Total != 0 || grade.Percentage != 0 || len(answers) != 0 {
		t.Fatalf("unexpected grade: %+v", grade)
	}
}

func TestGradePercentageRounding(t *testing.T) {
	exam := &model.Exam{Questions: []model.Question{
		bankQuestion(1, nil, 1),
		bankQuestion(2, nil, 1),
		bankQuestion(3, nil, 1),
	}}
	grade, _ := Grade(exam, []model.AnsweredQuestion{{QuestionID: 1, AnswerID: 11}})
	if grade.Percentage != 33.33 {
		t.Fatalf("percentage = %v, want 33.33", grade.Percentage)
	}
}
