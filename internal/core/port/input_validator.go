package port

import "product-filter-service/internal/core/domain"

// InputValidatorPort rejects raw filter payloads whose shape cannot be coerced.
type InputValidatorPort interface {
	ValidateFilterInput(raw domain.RawFilterInput) error
}
