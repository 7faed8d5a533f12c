package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pitchcoach/backend/internal/service/eval"
	"github.com/pitchcoach/backend/pkg/utils"
)

// Evaluator is the slice of the evaluation pipeline this handler needs.
type Evaluator interface {
	Evaluate(ctx context.Context, transcript string, audio []byte, audioMIME string) (string, error)
}

// Handler accepts a finished conversation's artifact bundle and returns
// the generated coaching feedback.
type Handler struct {
	evaluator Evaluator
}

// New creates the feedback handler.
func New(evaluator Evaluator) *Handler {
	return &Handler{evaluator: evaluator}
}

// RegisterRoutes registers the feedback endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/feedback", h.handleFeedback)
}

type feedbackRequest struct {
	Log         string `json:"log"`
	AudioData   []byte `json:"audioData,omitempty"`
	AudioFormat string `json:"audioFormat,omitempty"`
}

func (h *Handler) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var payload feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	feedback, err := h.evaluator.Evaluate(r.Context(), payload.Log, payload.AudioData, mimeFor(payload.AudioFormat))
	if err != nil {
		switch {
		case errors.Is(err, eval.ErrEmptyInput):
			utils.RespondError(w, http.StatusBadRequest, "conversation log is empty, nothing to evaluate")
		case errors.Is(err, eval.ErrMediaStagingFailed):
			utils.RespondError(w, http.StatusInternalServerError, err.Error())
		case errors.Is(err, eval.ErrEvaluationFailed):
			utils.RespondError(w, http.StatusBadGateway, err.Error())
		default:
			utils.RespondError(w, http.StatusInternalServerError, "evaluation failed")
		}
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"feedback": feedback})
}

func mimeFor(format string) string {
	switch format {
	case "", "webm":
		return "audio/webm"
	case "wav":
		return "audio/wav"
	case "mp3":
		return "audio/mpeg"
	case "ogg":
		return "audio/ogg"
	default:
		return "audio/" + format
	}
}
