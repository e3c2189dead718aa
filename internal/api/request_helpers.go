package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// yearParam extracts and validates the {year} URL parameter.
func yearParam(r *http.Request) (int, error) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year <= 0 {
		return 0, fmt.Errorf("invalid year parameter")
	}
	return year, nil
}

// roundParam extracts and validates the {round} URL parameter.
func roundParam(r *http.Request) (int, error) {
	round, err := strconv.Atoi(chi.URLParam(r, "round"))
	if err != nil || round <= 0 {
		return 0, fmt.Errorf("invalid round parameter")
	}
	return round, nil
}
