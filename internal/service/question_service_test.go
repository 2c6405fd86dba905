package service

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stemsi/exbank-backend/internal/model"
	"github.com/stemsi/exbank-backend/internal/storage"
)

// multipartFiles builds real *multipart.FileHeader values by parsing a
// generated multipart body.
func multipartFiles(t *testing.T, files map[string]string) []*multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, contentType := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="media"; filename="`+name+`"`)
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		_, _ = part.Write([]byte("content of " + name))
	}
	_ = mw.Close()

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatalf("parse multipart: %v", err)
	}
	return req.MultipartForm.File["media"]
}

func newTestQuestionService(t *testing.T) (*QuestionService, *fakeQuestionStore, string) {
	t.Helper()
	dir := t.TempDir()
	media := NewMediaService(storage.NewLocalProvider(dir, "/uploads"), 1024, 2, zerolog.Nop())
	store := newFakeQuestionStore()
	return NewQuestionService(store, media), store, dir
}

func TestQuestionCreateWithMedia(t *testing.T) {
	svc, _, dir := newTestQuestionService(t)

	req := &model.CreateQuestionRequest{
		Text:             "2 + 2?",
		Points:           2,
		ThemeID:          int64Ptr(3),
		CorrectAnswers:   []string{"4"},
		IncorrectAnswers: []string{"3", "5"},
	}
	q, err := svc.Create(context.Background(), req, multipartFiles(t, map[string]string{"fig.png": "image/png"}))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if len(q.Answers) != 3 || !q.Answers[0].Correct || q.Answers[1].Correct {
		t.Fatalf("unexpected answers: %+v", q.Answers)
	}
	if len(q.Media) != 1 || q.Media[0].ContentType != "image/png" {
		t.Fatalf("unexpected media: %+v", q.Media)
	}
	if _, err := os.Stat(filepath.Join(dir, filepath.Base(q.Media[0].URL))); err != nil {
		t.Fatalf("media not stored: %v", err)
	}
}

func TestQuestionCreateRejectsMediaBeforeWriting(t *testing.T) {
	svc, store, dir := newTestQuestionService(t)
	req := &model.CreateQuestionRequest{Text: "q", Points: 1, CorrectAnswers: []string{"a"}}

	_, err := svc.Create(context.Background(), req, multipartFiles(t, map[string]string{"run.exe": "application/x-msdownload"}))
	if !errors.Is(err, ErrUnsupportedFileType) {
		t.Fatalf("expected ErrUnsupportedFileType, got %v", err)
	}

	_, err = svc.Create(context.Background(), req, multipartFiles(t, map[string]string{
		"a.png": "image/png", "b.png": "image/png", "c.png": "image/png",
	}))
	if !errors.Is(err, ErrTooManyFiles) {
		t.Fatalf("expected ErrTooManyFiles, got %v", err)
	}

	if store.createCalls != 0 {
		t.Errorf("question store written despite invalid media")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("files stored despite invalid media: %d", len(entries))
	}
}

func TestQuestionUpdateAndDelete(t *testing.T) {
	svc, store, _ := newTestQuestionService(t)
	ctx := context.Background()
	store.questions = []model.Question{bankQuestion(1, nil, 1), bankQuestion(2, nil, 1)}
	store.inUse[2] = true

	q, err := svc.Update(ctx, 1, &model.UpdateQuestionRequest{Text: "edited", Points: 4})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if q.Text != "edited" || q.Points != 4 {
		t.Errorf("update not applied: %+v", q)
	}

	if _, err := svc.Update(ctx, 99, &model.UpdateQuestionRequest{Text: "x", Points: 1}); !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("update missing: got %v", err)
	}
	if _, err := svc.Update(ctx, 2, &model.UpdateQuestionRequest{Text: "edited", Points: 5}); !errors.Is(err, ErrQuestionInUse) {
		t.Fatalf("update in use: got %v", err)
	}
	if q, _ := svc.Get(ctx, 2); q.Points != 1 || q.Text == "edited" {
		t.Errorf("question used by an exam was changed: %+v", q)
	}
	if err := svc.Delete(ctx, 2); !errors.Is(err, ErrQuestionInUse) {
		t.Fatalf("delete in use: got %v", err)
	}
	if err := svc.Delete(ctx, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, 1); !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("deleted question still found: %v", err)
	}
}
