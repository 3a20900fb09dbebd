package rest

import (
	"net/http"
	"product-filter-service/internal/core/port/usecases_port"
)

type PriceRangeHandler struct {
	filterUC     usecases_port.FilterProductsUseCase
	invalidateUC usecases_port.InvalidatePriceRangeUseCase
}

func NewPriceRangeHandler(filterUC usecases_port.FilterProductsUseCase,
	invalidateUC usecases_port.InvalidatePriceRangeUseCase) *PriceRangeHandler {
	return &PriceRangeHandler{
		filterUC:     filterUC,
		invalidateUC: invalidateUC,
	}
}

func (h *PriceRangeHandler) GetPriceRange(w http.ResponseWriter, r *http.Request) {
	priceRange, err := h.filterUC.HandlePriceRangeQuery(r.Context())
	if err != nil {
		respondWithUseCaseError(w, r, err, "Failed to resolve price range")
		return
	}

	RespondWithJSON(w, http.StatusOK, PriceRangeResponse{
		Success: true,
		Min:     priceRange.Min,
		Max:     priceRange.Max,
	})
}

func (h *PriceRangeHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	if err := h.invalidateUC.Invalidate(r.Context()); err != nil {
		respondWithUseCaseError(w, r, err, "Failed to invalidate price range")
		return
	}
	RespondWithJSON(w, http.StatusOK, StatusResponse{Success: true})
}
