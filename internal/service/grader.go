package service

import "github.com/stemsi/exbank-backend/internal/model"

// Grade scores a solution against an exam.
//
// For each exam question the student's answer is the last entry for that
// question in the solution. The question scores its points when that
// answer belongs to it and is correct. Entries for questions outside the
// exam are ignored. The returned answers follow exam question order.
func Grade(exam *model.Exam, solution []model.AnsweredQuestion) (model.Grade, []model.StudentExamAnswer) {
	last := make(map[int64]int64, len(solution))
	for _, a := range solution {
		last[a.QuestionID] = a.AnswerID
	}

	grade := model.Grade{Total: len(exam.Questions)}
	answers := make([]model.StudentExamAnswer, len(exam.Questions))

	for i := range exam.Questions {
		q := &exam.Questions[i]
		grade.MaxPoints += q.Points
		answers[i].QuestionID = q.ID

		answerID, ok := last[q.ID]
		if !ok {
			continue
		}
		answers[i].AnswerID = &answerID

		if a := q.AnswerByID(answerID); a != nil && a.Correct {
			answers[i].Correct = true
			grade.Points += q.Points
			grade.Correct++
		}
	}

	grade.Percentage = model.Percentage(grade.Points, grade.MaxPoints)
	return grade, answers
}
