package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"product-filter-service/internal/contextkeys"
	"product-filter-service/internal/core/domain"
	"product-filter-service/internal/core/port"
	"product-filter-service/internal/core/usecase"
	"strings"
)

const maxBodyBytes = 1 << 20

// WriteJSONError sends {success:false, message} with the given status.
func WriteJSONError(w http.ResponseWriter, statusCode int, message string) {
	RespondWithJSON(w, statusCode, ErrorResponse{Success: false, Message: message})
}

// RespondWithJSON sends a JSON response.
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Failed to marshal JSON response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	w.Write(response)
}

// respondWithUseCaseError maps domain errors onto statuses. Details stay in the logs.
func respondWithUseCaseError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	logger := contextkeys.LoggerFromContext(r.Context())

	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		logger.Warn("Rejected filter input", port.Fields{"field": validationErr.Field, "reason": validationErr.Reason})
		WriteJSONError(w, http.StatusBadRequest, "Invalid filter parameters")
	case errors.Is(err, domain.ErrNoProductsAvailable):
		RespondWithJSON(w, http.StatusOK, ErrorResponse{Success: false, Message: "No products available"})
	case errors.Is(err, domain.ErrCatalogUnavailable):
		logger.Error("Catalog unavailable", err, nil)
		WriteJSONError(w, http.StatusServiceUnavailable, "Catalog is temporarily unavailable")
	default:
		logger.Error(fallback, err, nil)
		WriteJSONError(w, http.StatusInternalServerError, fallback)
	}
}

// readFilterInput collects the raw filter payload from the query string,
// a urlencoded/multipart form or a JSON object body.
func readFilterInput(r *http.Request) (domain.RawFilterInput, error) {
	if r.Body != nil && r.Method != http.MethodGet && isJSON(r.Header.Get("Content-Type")) {
		raw, err := decodeJSONObject(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			return nil, err
		}
		// query parameters fill keys the body does not carry
		for key, value := range foldValues(r.URL.Query()) {
			if _, exists := raw[key]; !exists {
				raw[key] = value
			}
		}
		return raw, nil
	}

	if r.Body != nil {
		r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	}
	if err := r.ParseForm(); err != nil {
		return nil, &domain.ValidationError{Reason: fmt.Sprintf("malformed form body: %v", err)}
	}
	return foldValues(r.Form), nil
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "application/json"
}

func decodeJSONObject(body io.Reader) (domain.RawFilterInput, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.RawFilterInput{}, nil
		}
		return nil, &domain.ValidationError{Reason: "body must be a JSON object"}
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return domain.RawFilterInput(raw), nil
}

// foldValues turns flat form keys into the raw payload shape:
// "categories[]" becomes a list, "attributes[pa_color][]" a nested attributes entry.
func foldValues(values url.Values) domain.RawFilterInput {
	raw := domain.RawFilterInput{}
	attributes := map[string][]string{}

	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}

		if name, ok := attributeKey(key); ok {
			attributes[name] = append(attributes[name], vals...)
			continue
		}

		base := strings.TrimSuffix(key, "[]")
		switch {
		case base == usecase.KeyCategories || base == usecase.KeyIntentions:
			existing, _ := raw[base].([]string)
			raw[base] = append(existing, vals...)
		case base != key || len(vals) > 1:
			raw[base] = vals
		default:
			raw[base] = vals[0]
		}
	}

	if len(attributes) > 0 {
		raw[usecase.KeyAttributes] = attributes
	}
	return raw
}

// attributeKey extracts the taxonomy from "attributes[<tax>]" and "attributes[<tax>][]".
func attributeKey(key string) (string, bool) {
	prefix := usecase.KeyAttributes + "["
	if !strings.HasPrefix(key, prefix) {
		return "", false
	}
	rest := strings.TrimSuffix(strings.TrimPrefix(key, prefix), "[]")
	name, ok := strings.CutSuffix(rest, "]")
	if !ok || name == "" || strings.ContainsAny(name, "[]") {
		return "", false
	}
	return name, true
}
