package routes

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/mbolis/survey-publisher/remote"
)

// dataResponse mirrors the backend envelope. Warning is set when data is
// demo or local data standing in for a failed backend call.
type dataResponse struct {
	Success bool          `json:"success"`
	Data    any           `json:"data"`
	Warning *remote.Error `json:"warning,omitempty"`
}

func renderData(w http.ResponseWriter, r *http.Request, data any) {
	render.JSON(w, r, dataResponse{Success: true, Data: data})
}

func renderFallback[T any](w http.ResponseWriter, r *http.Request, res remote.Result[T]) {
	render.JSON(w, r, dataResponse{Success: true, Data: res.Data, Warning: res.Fallback})
}
