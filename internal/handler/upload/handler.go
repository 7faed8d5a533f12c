package upload

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pitchcoach/backend/internal/service/storage"
	"github.com/pitchcoach/backend/pkg/utils"
)

// Signer pre-authorizes direct client uploads to the artifact bucket.
type Signer interface {
	SignUpload(filename, contentType string, expiry time.Duration) (storage.SignedUpload, error)
}

// Handler issues signed upload URLs for recorded audio.
type Handler struct {
	signer Signer
	expiry time.Duration
}

// New creates the upload handler.
func New(signer Signer) *Handler {
	return &Handler{signer: signer, expiry: 15 * time.Minute}
}

// RegisterRoutes registers the sign-upload endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/sign-upload", h.handleSignUpload)
}

type signUploadRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
}

func (h *Handler) handleSignUpload(w http.ResponseWriter, r *http.Request) {
	var payload signUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if payload.Filename == "" {
		payload.Filename = "audio.webm"
	}
	if payload.ContentType == "" {
		payload.ContentType = "audio/webm"
	}

	signed, err := h.signer.SignUpload(payload.Filename, payload.ContentType, h.expiry)
	if err != nil {
		log.Printf("[upload] sign url failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to sign upload url")
		return
	}

	utils.RespondJSON(w, http.StatusOK, signed)
}
