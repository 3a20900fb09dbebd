package postgres

import (
	"fmt"
	"product-filter-service/internal/core/domain"
	"strings"
)

// sortColumns whitelists the columns a query spec may order by.
var sortColumns = map[domain.SortField]string{
	domain.SortFieldPrice:         "p.price",
	domain.SortFieldCreatedAt:     "p.created_at",
	domain.SortFieldTotalSales:    "p.total_sales",
	domain.SortFieldAverageRating: "p.average_rating",
	domain.SortFieldTitle:         "p.title",
}

type queryBuilder struct {
	conditions []string
	args       []interface{}
	argId      int
}

func newQueryBuilder() *queryBuilder {
	return &queryBuilder{
		argId:      1,
		conditions: []string{"p.status = 'publish'"},
		args:       make([]interface{}, 0),
	}
}

// addCondition formats condition with the next placeholder number and records arg.
func (qb *queryBuilder) addCondition(condition string, fieldName string, arg interface{}) {
	qb.conditions = append(qb.conditions, fmt.Sprintf(condition, fieldName, qb.argId))
	qb.args = append(qb.args, arg)
	qb.argId++
}

func (qb *queryBuilder) AddPriceFilter(price *domain.PriceRangePredicate) {
	if price == nil {
		return
	}
	if price.Min > 0 {
		qb.addCondition("%s >= $%d", "p.price", price.Min)
	}
	if price.Max < domain.UnboundedPrice {
		qb.addCondition("%s <= $%d", "p.price", price.Max)
	}
}

// AddTaxonomyFilters adds one EXISTS per taxonomy; terms inside a taxonomy
// match with ANY, taxonomies are joined with TaxonomyMatch.
func (qb *queryBuilder) AddTaxonomyFilters(taxonomies []domain.TaxonomyPredicate, match domain.MatchMode) {
	clauses := make([]string, 0, len(taxonomies))
	for _, t := range taxonomies {
		if len(t.Terms) == 0 {
			continue
		}
		termCheck := fmt.Sprintf("pt.term_slug = ANY($%d)", qb.argId+1)
		if t.Match == domain.MatchAll {
			termCheck = fmt.Sprintf("pt.term_slug = ANY($%d) GROUP BY pt.product_id HAVING COUNT(DISTINCT pt.term_slug) = cardinality($%d)", qb.argId+1, qb.argId+1)
		}
		clauses = append(clauses, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM product_terms pt WHERE pt.product_id = p.id AND pt.taxonomy = $%d AND %s)",
			qb.argId, termCheck,
		))
		qb.args = append(qb.args, t.Taxonomy, t.Terms)
		qb.argId += 2
	}
	if len(clauses) == 0 {
		return
	}

	joiner := " AND "
	if match == domain.MatchAny {
		joiner = " OR "
	}
	qb.conditions = append(qb.conditions, "("+strings.Join(clauses, joiner)+")")
}

func (qb *queryBuilder) AddSearch(search *string) {
	if search == nil || *search == "" {
		return
	}
	pattern := "%" + escapeLike(*search) + "%"
	qb.conditions = append(qb.conditions, fmt.Sprintf(
		"(p.title ILIKE $%d OR p.description ILIKE $%d)", qb.argId, qb.argId,
	))
	qb.args = append(qb.args, pattern)
	qb.argId++
}

// build returns the WHERE clause and its positional arguments.
func (qb *queryBuilder) build() (string, []interface{}) {
	return "WHERE " + strings.Join(qb.conditions, " AND "), qb.args
}

// applySpec translates a catalog query spec into SQL predicates.
func applySpec(spec domain.CatalogQuerySpec) (string, []interface{}) {
	qb := newQueryBuilder()

	qb.AddTaxonomyFilters(spec.Taxonomies, spec.TaxonomyMatch)
	qb.AddPriceFilter(spec.Price)
	qb.AddSearch(spec.Search)

	if spec.RatingFloor != nil {
		qb.addCondition("%s >= $%d", "p.average_rating", *spec.RatingFloor)
	}
	if spec.StockStatus != nil {
		qb.addCondition("%s = $%d", "p.stock_status", string(*spec.StockStatus))
	}

	return qb.build()
}

// orderClause always ends with the id so paging is stable across equal sort values.
func orderClause(sort domain.SortDescriptor) string {
	column, ok := sortColumns[sort.Field]
	if !ok {
		column = sortColumns[domain.SortFieldTitle]
	}
	direction := "ASC"
	if sort.Direction == domain.Descending {
		direction = "DESC"
	}
	return fmt.Sprintf("ORDER BY %s %s, p.id ASC", column, direction)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
