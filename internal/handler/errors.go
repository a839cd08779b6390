package handler

import (
	"errors"
	"net/http"

	"medialib/internal/domain"
	"medialib/internal/httputil"
)

// handleError converts domain errors to problem responses.
// Remote failures keep the status the store reported.
func handleError(w http.ResponseWriter, err error, folderID string) {
	problem := httputil.NewProblem(http.StatusInternalServerError, "internal server error")

	var httpErr domain.HTTPError
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrNotEmpty),
		errors.Is(err, domain.ErrRemote):
		if errors.As(err, &httpErr) {
			problem = httputil.NewProblem(httpErr.StatusCode(), err.Error())
		}
	}

	problem.FolderID = folderID
	httputil.RespondProblem(w, problem)
}
