package rest

import (
	"net/http"
	"product-filter-service/internal/core/port/usecases_port"
)

type FilterHandler struct {
	filterUC usecases_port.FilterProductsUseCase
}

func NewFilterHandler(filterUC usecases_port.FilterProductsUseCase) *FilterHandler {
	return &FilterHandler{filterUC: filterUC}
}

func (h *FilterHandler) Filter(w http.ResponseWriter, r *http.Request) {
	raw, err := readFilterInput(r)
	if err != nil {
		respondWithUseCaseError(w, r, err, "Failed to filter products")
		return
	}

	res, err := h.filterUC.Handle(r.Context(), raw)
	if err != nil {
		respondWithUseCaseError(w, r, err, "Failed to filter products")
		return
	}

	RespondWithJSON(w, http.StatusOK, toFilterResponse(res))
}

func (h *FilterHandler) Reset(w http.ResponseWriter, r *http.Request) {
	raw, err := readFilterInput(r)
	if err != nil {
		respondWithUseCaseError(w, r, err, "Failed to reset filters")
		return
	}

	res, err := h.filterUC.HandleReset(r.Context(), raw)
	if err != nil {
		respondWithUseCaseError(w, r, err, "Failed to reset filters")
		return
	}

	RespondWithJSON(w, http.StatusOK, toFilterResponse(res))
}
