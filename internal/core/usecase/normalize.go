package usecase

import (
	"encoding/json"
	"math"
	"product-filter-service/internal/core/domain"
	"product-filter-service/internal/core/port"
	"sort"
	"strconv"
	"strings"
)

// Request keys of the filter payload.
const (
	KeyCategories  = "categories"
	KeyIntentions  = "intentions"
	KeyAttributes  = "attributes"
	KeyMinPrice    = "min_price"
	KeyMaxPrice    = "max_price"
	KeySearch      = "search"
	KeyPage        = "page"
	KeyPerPage     = "per_page"
	KeySortBy      = "sort_by"
	KeyRating      = "rating"
	KeyStockStatus = "stock_status"
)

const (
	minRating = 1
	maxRating = 5

	// integer inputs saturate here so page*perPage stays representable
	maxInputInt = math.MaxInt32
)

// InputNormalizer turns an untrusted payload into a FilterRequest.
// Out-of-range values are clamped or defaulted; only shapes that cannot be
// coerced at all produce a ValidationError.
type InputNormalizer struct {
	validator  port.InputValidatorPort
	pageSize   port.PageSizePort
	maxPerPage int
}

// NewInputNormalizer creates the normalizer. validator may be nil; maxPerPage <= 0 disables the upper clamp.
func NewInputNormalizer(validator port.InputValidatorPort, pageSize port.PageSizePort, maxPerPage int) *InputNormalizer {
	return &InputNormalizer{
		validator:  validator,
		pageSize:   pageSize,
		maxPerPage: maxPerPage,
	}
}

func (n *InputNormalizer) Normalize(raw domain.RawFilterInput) (domain.FilterRequest, error) {
	if n.validator != nil {
		if err := n.validator.ValidateFilterInput(raw); err != nil {
			return domain.FilterRequest{}, err
		}
	}

	req := domain.FilterRequest{
		Attributes: map[string][]string{},
		MaxPrice:   domain.UnboundedPrice,
		SortKey:    domain.SortDefault,
	}

	var err error
	if req.Categories, err = termList(raw, KeyCategories); err != nil {
		return domain.FilterRequest{}, err
	}

	if err := n.normalizeAttributes(raw, &req); err != nil {
		return domain.FilterRequest{}, err
	}

	minPrice, err := scalar(raw, KeyMinPrice)
	if err != nil {
		return domain.FilterRequest{}, err
	}
	if v, ok := parsePrice(minPrice); ok {
		req.MinPrice = v
	}

	maxPrice, err := scalar(raw, KeyMaxPrice)
	if err != nil {
		return domain.FilterRequest{}, err
	}
	if v, ok := parsePrice(maxPrice); ok {
		req.MaxPrice = math.Min(v, domain.UnboundedPrice)
	}

	search, err := scalar(raw, KeySearch)
	if err != nil {
		return domain.FilterRequest{}, err
	}
	req.Search = sanitizeText(search)

	sortBy, err := scalar(raw, KeySortBy)
	if err != nil {
		return domain.FilterRequest{}, err
	}
	if token := strings.ToLower(strings.TrimSpace(sortBy)); token != "" {
		req.SortKey = domain.ParseSortKey(token)
	}

	rating, err := scalar(raw, KeyRating)
	if err != nil {
		return domain.FilterRequest{}, err
	}
	req.RatingFloor = parseRating(rating)

	stock, err := scalar(raw, KeyStockStatus)
	if err != nil {
		return domain.FilterRequest{}, err
	}
	req.StockStatus = parseStockStatus(stock)

	page, err := scalar(raw, KeyPage)
	if err != nil {
		return domain.FilterRequest{}, err
	}
	req.Page = 1
	if v, ok := parseInt(page); ok && v > 1 {
		req.Page = v
	}

	perPage, err := scalar(raw, KeyPerPage)
	if err != nil {
		return domain.FilterRequest{}, err
	}
	req.PerPage = n.resolvePerPage(perPage)

	return req, nil
}

func (n *InputNormalizer) normalizeAttributes(raw domain.RawFilterInput, req *domain.FilterRequest) error {
	intentions, err := termList(raw, KeyIntentions)
	if err != nil {
		return err
	}
	if len(intentions) > 0 {
		req.Attributes[domain.IntentionTaxonomy] = intentions
	}

	value, present := raw[KeyAttributes]
	if !present || value == nil {
		return nil
	}

	var attributes map[string]any
	switch v := value.(type) {
	case map[string]any:
		attributes = v
	case map[string][]string:
		attributes = make(map[string]any, len(v))
		for k, terms := range v {
			attributes[k] = terms
		}
	case map[string]string:
		attributes = make(map[string]any, len(v))
		for k, term := range v {
			attributes[k] = term
		}
	default:
		return &domain.ValidationError{Field: KeyAttributes, Reason: "must be an object of taxonomy to terms"}
	}

	// stable iteration so merged intention terms keep a deterministic order
	names := make([]string, 0, len(attributes))
	for name := range attributes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		taxonomy := strings.ToLower(sanitizeText(name))
		if taxonomy == "" {
			continue
		}
		terms, err := coerceTerms(KeyAttributes+"."+name, attributes[name])
		if err != nil {
			return err
		}
		if len(terms) == 0 {
			continue
		}
		req.Attributes[taxonomy] = mergeTerms(req.Attributes[taxonomy], terms)
	}
	return nil
}

func (n *InputNormalizer) resolvePerPage(value string) int {
	fallback := 0
	if n.pageSize != nil {
		fallback = n.pageSize.DefaultPerPage()
	}
	if fallback < 1 {
		fallback = 1
	}

	perPage, ok := parseInt(value)
	if !ok || perPage < 1 {
		perPage = fallback
	}
	if n.maxPerPage > 0 && perPage > n.maxPerPage {
		perPage = n.maxPerPage
	}
	return perPage
}

// termList reads a list-valued key. A scalar becomes a one-element list.
func termList(raw domain.RawFilterInput, key string) ([]string, error) {
	value, present := raw[key]
	if !present {
		return []string{}, nil
	}
	return coerceTerms(key, value)
}

func coerceTerms(field string, value any) ([]string, error) {
	var items []string
	switch v := value.(type) {
	case nil:
		return []string{}, nil
	case []string:
		items = v
	case []any:
		items = make([]string, 0, len(v))
		for _, item := range v {
			s, ok := scalarString(item)
			if !ok {
				return nil, &domain.ValidationError{Field: field, Reason: "list entries must be scalar"}
			}
			items = append(items, s)
		}
	default:
		s, ok := scalarString(v)
		if !ok {
			return nil, &domain.ValidationError{Field: field, Reason: "must be a scalar or a list of scalars"}
		}
		items = []string{s}
	}

	terms := make([]string, 0, len(items))
	for _, item := range items {
		if term := sanitizeText(item); term != "" {
			terms = append(terms, term)
		}
	}
	return mergeTerms(nil, terms), nil
}

// mergeTerms appends terms not yet in base, keeping first-seen order.
func mergeTerms(base, terms []string) []string {
	seen := make(map[string]struct{}, len(base)+len(terms))
	out := make([]string, 0, len(base)+len(terms))
	for _, list := range [][]string{base, terms} {
		for _, term := range list {
			if _, dup := seen[term]; dup {
				continue
			}
			seen[term] = struct{}{}
			out = append(out, term)
		}
	}
	return out
}

// scalar reads a single-valued key. A one-element list is accepted as its element.
func scalar(raw domain.RawFilterInput, key string) (string, error) {
	value, present := raw[key]
	if !present || value == nil {
		return "", nil
	}
	switch v := value.(type) {
	case []string:
		if len(v) == 0 {
			return "", nil
		}
		if len(v) == 1 {
			return v[0], nil
		}
	case []any:
		if len(v) == 0 {
			return "", nil
		}
		if len(v) == 1 {
			if s, ok := scalarString(v[0]); ok {
				return s, nil
			}
		}
	default:
		if s, ok := scalarString(v); ok {
			return s, nil
		}
	}
	return "", &domain.ValidationError{Field: key, Reason: "must be a scalar value"}
}

func scalarString(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", true
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	case int:
		return strconv.Itoa(v), true
	case int32:
		return strconv.FormatInt(int64(v), 10), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case uint:
		return strconv.FormatUint(uint64(v), 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	case bool:
		return strconv.FormatBool(v), true
	}
	return "", false
}

// parsePrice accepts "12.5" and "12,5". Negative, non-finite and unparsable values are rejected.
func parsePrice(value string) (float64, bool) {
	value = strings.TrimSpace(strings.ReplaceAll(value, ",", "."))
	if value == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return v, true
}

func parseInt(value string) (int, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if v, err := strconv.Atoi(value); err == nil {
		return clampInt(v), true
	}
	// "2.0" arrives from JSON numbers formatted as floats; out-of-range
	// integers land here too and saturate like the Atoi path
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	switch {
	case f > maxInputInt:
		return maxInputInt, true
	case f < -maxInputInt:
		return -maxInputInt, true
	}
	return int(f), true
}

func clampInt(v int) int {
	switch {
	case v > maxInputInt:
		return maxInputInt
	case v < -maxInputInt:
		return -maxInputInt
	}
	return v
}

func parseRating(value string) *int {
	rating, ok := parseInt(value)
	if !ok || rating < minRating {
		return nil
	}
	if rating > maxRating {
		rating = maxRating
	}
	return &rating
}

func parseStockStatus(value string) *domain.StockStatus {
	token := strings.ToLower(strings.TrimSpace(value))
	token = strings.NewReplacer("_", "", "-", "", " ", "").Replace(token)
	var status domain.StockStatus
	switch token {
	case string(domain.StockInStock):
		status = domain.StockInStock
	case string(domain.StockOutOfStock):
		status = domain.StockOutOfStock
	default:
		return nil
	}
	return &status
}

// ResetInput keeps only the pagination keys of a raw payload.
func ResetInput(raw domain.RawFilterInput) domain.RawFilterInput {
	reset := domain.RawFilterInput{}
	for _, key := range []string{KeyPage, KeyPerPage} {
		if v, ok := raw[key]; ok {
			reset[key] = v
		}
	}
	return reset
}
