package repository

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/flicky/shopsphere-api/internal/model"
)

// ProductFilter is the composable catalog query. Zero values mean "no
// predicate". All predicates are ANDed.
type ProductFilter struct {
	Search     string
	CategoryID *uuid.UUID
	SellerID   *uuid.UUID
	ExcludeID  *uuid.UUID
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	MinRating  *float64
	Status     model.ProductStatus
	Featured   bool
	NewArrival bool
	BestSeller bool

	// Sort holds API sort keys; a leading "-" means descending.
	Sort []string
	// Fields restricts the selected columns to the named API fields.
	Fields []string

	Limit  int
	Offset int
}

const productFrom = `FROM products p LEFT JOIN categories c ON c.id = p.category_id`

var productColumns = []string{
	"p.id", "p.name", "p.description", "p.price", "p.original_price", "p.discount",
	"p.category_id", "COALESCE(c.name, '') AS category_name", "COALESCE(c.slug, '') AS category_slug",
	"p.brand", "p.sku", "p.images", "p.tags", "p.stock", "p.rating_average", "p.rating_count",
	"p.seller_id", "p.featured", "p.new_arrival", "p.best_seller", "p.status",
	"p.views", "p.sales", "p.created_at", "p.updated_at",
}

var productFieldColumns = map[string][]string{
	"name":          {"p.name"},
	"description":   {"p.description"},
	"price":         {"p.price"},
	"originalPrice": {"p.original_price"},
	"discount":      {"p.discount"},
	"category":      {"p.category_id", "COALESCE(c.name, '') AS category_name", "COALESCE(c.slug, '') AS category_slug"},
	"brand":         {"p.brand"},
	"sku":           {"p.sku"},
	"images":        {"p.images"},
	"tags":          {"p.tags"},
	"stock":         {"p.stock"},
	"ratings":       {"p.rating_average", "p.rating_count"},
	"seller":        {"p.seller_id"},
	"featured":      {"p.featured"},
	"newArrival":    {"p.new_arrival"},
	"bestSeller":    {"p.best_seller"},
	"status":        {"p.status"},
	"views":         {"p.views"},
	"sales":         {"p.sales"},
	"createdAt":     {"p.created_at"},
	"updatedAt":     {"p.updated_at"},
}

var productSortColumns = map[string]string{
	"price":      "p.price",
	"createdAt":  "p.created_at",
	"created_at": "p.created_at",
	"name":       "p.name",
	"rating":     "p.rating_average",
	"sales":      "p.sales",
	"views":      "p.views",
	"discount":   "p.discount",
}

type productQuery struct {
	where []string
	args  []any
}

func (q *productQuery) arg(v any) string {
	q.args = append(q.args, v)
	return fmt.Sprintf("$%d", len(q.args))
}

func (q *productQuery) and(format string, v any) {
	q.where = append(q.where, fmt.Sprintf(format, q.arg(v)))
}

// buildProductQuery renders f into a page query and a count query. The page
// query takes args; the count query takes the first len(countArgs) of them.
func buildProductQuery(f ProductFilter) (query, countQuery string, args, countArgs []any) {
	q := &productQuery{}

	var tsquery string
	if s := strings.TrimSpace(f.Search); s != "" {
		tsquery = fmt.Sprintf("websearch_to_tsquery('english', %s)", q.arg(s))
		q.where = append(q.where, "p.search_vector @@ "+tsquery)
	}
	if f.CategoryID != nil {
		q.and("p.category_id = %s", *f.CategoryID)
	}
	if f.SellerID != nil {
		q.and("p.seller_id = %s", *f.SellerID)
	}
	if f.ExcludeID != nil {
		q.and("p.id <> %s", *f.ExcludeID)
	}
	if f.MinPrice != nil {
		q.and("p.price >= %s", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q.and("p.price <= %s", *f.MaxPrice)
	}
	if f.MinRating != nil {
		q.and("p.rating_average >= %s", *f.MinRating)
	}
	if f.Status != "" {
		q.and("p.status = %s", string(f.Status))
	}
	if f.Featured {
		q.where = append(q.where, "p.featured = TRUE")
	}
	if f.NewArrival {
		q.where = append(q.where, "p.new_arrival = TRUE")
	}
	if f.BestSeller {
		q.where = append(q.where, "p.best_seller = TRUE")
	}

	where := ""
	if len(q.where) > 0 {
		where = " WHERE " + strings.Join(q.where, " AND ")
	}

	countArgs = append([]any(nil), q.args...)
	countQuery = "SELECT COUNT(*) " + productFrom + where

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(selectColumns(f.Fields), ", "))
	b.WriteString(" ")
	b.WriteString(productFrom)
	b.WriteString(where)
	b.WriteString(" ORDER BY ")
	b.WriteString(strings.Join(orderBy(f.Sort, tsquery), ", "))

	if f.Limit > 0 {
		b.WriteString(" LIMIT " + q.arg(f.Limit))
	}
	if f.Offset > 0 {
		b.WriteString(" OFFSET " + q.arg(f.Offset))
	}
	return b.String(), countQuery, q.args, countArgs
}

func selectColumns(fields []string) []string {
	if len(fields) == 0 {
		return productColumns
	}
	cols := []string{"p.id"}
	seen := map[string]bool{"p.id": true}
	for _, field := range fields {
		for _, col := range productFieldColumns[strings.TrimSpace(field)] {
			if !seen[col] {
				seen[col] = true
				cols = append(cols, col)
			}
		}
	}
	return cols
}

// orderBy always ends with p.id so pagination is stable.
func orderBy(keys []string, tsquery string) []string {
	var terms []string
	used := map[string]bool{}
	for _, key := range keys {
		key = strings.TrimSpace(key)
		dir := "ASC"
		if strings.HasPrefix(key, "-") {
			dir = "DESC"
			key = key[1:]
		}
		if key == "relevance" {
			if tsquery != "" && !used[key] {
				used[key] = true
				terms = append(terms, fmt.Sprintf("ts_rank(p.search_vector, %s) DESC", tsquery))
			}
			continue
		}
		col, ok := productSortColumns[key]
		if !ok || used[col] {
			continue
		}
		used[col] = true
		terms = append(terms, col+" "+dir)
	}
	if len(terms) == 0 {
		terms = append(terms, "p.created_at DESC")
	}
	return append(terms, "p.id DESC")
}
