package handlers

import (
	"context"
	"errors"

	"github.com/serroba/launch-site-go/internal/apierror"
	"github.com/serroba/launch-site-go/internal/content"
	"github.com/serroba/launch-site-go/internal/tracking"
)

const msgInvalidQuiz = "Invalid quiz answers"

// QuizHandler records completed onboarding quizzes.
type QuizHandler struct {
	catalog *content.Catalog
	tracker *tracking.Tracker
}

// NewQuizHandler creates a new quiz handler.
func NewQuizHandler(catalog *content.Catalog, tracker *tracking.Tracker) *QuizHandler {
	return &QuizHandler{catalog: catalog, tracker: tracker}
}

// Questions returns the quiz definition.
func (h *QuizHandler) Questions(_ context.Context, _ *struct{}) (*QuizResponse, error) {
	resp := &QuizResponse{}
	resp.Body.Questions = h.catalog.Quiz

	return resp, nil
}

// Submit validates the answers and tracks the completion.
func (h *QuizHandler) Submit(ctx context.Context, req *QuizSubmitRequest) (*QuizSubmitResponse, error) {
	if err := validate.Struct(req.Body); err != nil {
		return nil, validationError(msgInvalidQuiz, err)
	}

	answers, err := h.catalog.ValidateAnswers(req.Body.Answers)
	if err != nil {
		if errors.Is(err, content.ErrInvalidAnswers) {
			return nil, apierror.BadRequest(msgInvalidQuiz).WithDetails(err.Error())
		}

		return nil, err
	}

	if req.Body.PageID != "" || req.Body.DistinctID != "" {
		ctx = tracking.WithProperties(ctx, pageProperties(req.Body.PageID, req.Body.DistinctID, ""))
	}

	h.tracker.TrackQuizCompleted(ctx, answers)

	resp := &QuizSubmitResponse{}
	resp.Body.Success = true

	return resp, nil
}
