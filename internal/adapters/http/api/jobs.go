package api

import (
	"net/http"
	"strings"

	"github.com/okian/kalpha/internal/domain/model"
	"github.com/okian/kalpha/internal/domain/types"
)

// JobsHandler submits and reads asynchronous jobs.
type JobsHandler struct {
	deps    Dependencies
	maxBody int64
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(deps Dependencies, maxBody int64) *JobsHandler {
	return &JobsHandler{deps: deps, maxBody: maxBody}
}

// HandleSubmit handles POST /jobs requests.
func (h *JobsHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_job"

	body, req, err := decodeRequest(w, r, h.maxBody, op)
	if err != nil {
		fail(w, err)
		return
	}

	id, err := h.deps.Submit(r.Context(), strings.TrimSpace(body.JobID), req)
	if err != nil {
		fail(w, WrapKind(op, errSubmitFailed, err))
		return
	}
	w.Header().Set("Location", "/jobs/"+id)
	writeJSON(w, http.StatusAccepted, jobResponse{JobID: id, Status: model.JobPending})
}

// HandleGet handles GET /jobs/{id} requests.
func (h *JobsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_job"

	view, err := h.deps.Job(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, WrapKind(op, errLookupFailed, err))
		return
	}

	submitted := view.SubmittedAt
	writeJSON(w, http.StatusOK, jobResponse{
		JobID:       view.ID,
		Status:      view.Status,
		Result:      types.NewReportView(view.Result),
		Error:       view.Error,
		SubmittedAt: &submitted,
		FinishedAt:  view.FinishedAt,
	})
}
