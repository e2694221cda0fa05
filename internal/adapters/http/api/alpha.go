package api

import (
	"net/http"

	"github.com/okian/kalpha/internal/domain/types"
)

// AlphaHandler computes alpha synchronously.
type AlphaHandler struct {
	deps    Dependencies
	maxBody int64
}

// NewAlphaHandler creates a new alpha handler.
func NewAlphaHandler(deps Dependencies, maxBody int64) *AlphaHandler {
	return &AlphaHandler{deps: deps, maxBody: maxBody}
}

// HandleCompute handles POST /alpha requests.
func (h *AlphaHandler) HandleCompute(w http.ResponseWriter, r *http.Request) {
	const op = "api.compute_alpha"

	_, req, err := decodeRequest(w, r, h.maxBody, op)
	if err != nil {
		fail(w, err)
		return
	}

	res, err := h.deps.Compute(r.Context(), req)
	if err != nil {
		fail(w, WrapKind(op, errComputeFailed, err))
		return
	}
	writeJSON(w, http.StatusOK, types.NewReportView(&res))
}
