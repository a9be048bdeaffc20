package rest

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"sliderCaptchaAuth/pkg/puzzle"
)

const maxVerifyBody = 4 << 10

type Generator interface {
	Generate(ctx context.Context, src []byte, id string) (*puzzle.Puzzle, error)
}

type Verifier interface {
	Verify(ctx context.Context, id, submitted string) puzzle.Result
}

// Handler exposes the challenge protocol over JSON.
type Handler struct {
	generator Generator
	verifier  Verifier
	store     puzzle.Store
	logger    *zap.Logger
}

func NewHandler(generator Generator, verifier Verifier, store puzzle.Store, logger *zap.Logger) *Handler {
	return &Handler{
		generator: generator,
		verifier:  verifier,
		store:     store,
		logger:    logger,
	}
}

// Routes registers the API on r. staticDir, when set, is served at "/".
func (h *Handler) Routes(r *mux.Router, staticDir string) {
	api := r.PathPrefix("/api/challenge").Subrouter()
	api.HandleFunc("/start", h.handleStart).Methods(http.MethodGet, http.MethodPost)
	api.HandleFunc("/verify", h.handleVerify).Methods(http.MethodPost)
	api.HandleFunc("/{id}/status", h.handleStatus).Methods(http.MethodGet)
	api.HandleFunc("/{id}", h.handleDelete).Methods(http.MethodDelete)

	if staticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(staticDir)))
	}
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	// Ids are always minted here. Accepting one from the client would let it
	// overwrite an existing challenge.
	p, err := h.generator.Generate(r.Context(), nil, "")
	if err != nil {
		h.logger.Error("failed to generate challenge", zap.Error(err))
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, StartResponse{
		UUID:       p.ID,
		Piece:      p.PieceURI(),
		Background: p.BackgroundURI(),
		PieceY:     puzzle.PieceY,
		PieceSize:  puzzle.PieceSize,
		Width:      puzzle.ImageWidth,
		Height:     puzzle.ImageHeight,
	})
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	body := http.MaxBytesReader(w, r.Body, maxVerifyBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, ErrRespInvalidJSON)
		return
	}

	res := h.verifier.Verify(r.Context(), req.UUID, string(req.Position))
	msg := res.Reason
	if res.Success {
		msg = puzzle.Sentinel
	}
	h.writeJSON(w, http.StatusOK, VerifyResponse{Success: res.Success, Message: msg})
}

// handleStatus lets a downstream action check a challenge without verifying again.
func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	value, ok, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to load challenge", zap.String("id", id), zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, ErrRespInternal)
		return
	}
	if !ok {
		h.writeJSON(w, http.StatusNotFound, ErrRespNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, StatusResponse{UUID: id, Verified: puzzle.IsVerified(value)})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.store.Delete(r.Context(), id); err != nil {
		h.logger.Error("failed to delete challenge", zap.String("id", id), zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, ErrRespInternal)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status, resp := toErrorResponse(err)
	h.writeJSON(w, status, resp)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("failed to write response", zap.Error(err))
	}
}
