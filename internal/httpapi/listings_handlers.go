package httpapi

import (
	"net/http"
	"strconv"

	"github.com/mdeeno/motoieum/internal/store"
)

type ListingsHandler struct {
	Lister store.Lister
	Table  string
}

func (h ListingsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.Lister == nil {
		WriteError(w, r, http.StatusNotImplemented, CodeNotSupported, "store backend cannot list rows")
		return
	}

	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			WriteError(w, r, http.StatusBadRequest, CodeBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	rows, err := h.Lister.ListRecent(r.Context(), h.Table, limit)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, CodeStoreFailed, err.Error())
		return
	}
	if rows == nil {
		rows = []store.Listing{}
	}
	WriteJSON(w, http.StatusOK, rows)
}
