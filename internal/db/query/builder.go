package query

import (
	"fmt"
	"math"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/leafsii/blog-backend/internal/db/interfaces"
)

// Builder applies listing queries to select statements for one schema
type Builder struct {
	schema *interfaces.Schema
}

// NewBuilder creates a new query builder for a schema
func NewBuilder(schema *interfaces.Schema) *Builder {
	return &Builder{schema: schema}
}

// Apply adds search, filter, ordering and pagination clauses to sb.
// Unknown filter fields are rejected; unknown ordering fields are skipped.
func (b *Builder) Apply(sb sq.SelectBuilder, q *interfaces.Query) (sq.SelectBuilder, error) {
	if q == nil {
		q = &interfaces.Query{}
	}

	if cond := b.SearchCondition(q.Search); cond != nil {
		sb = sb.Where(cond)
	}

	for _, f := range q.Where {
		column, ok := b.schema.FilterFields[f.Field]
		if !ok {
			return sb, fmt.Errorf("%w: cannot filter %s by %q", interfaces.ErrInvalidQuery, b.schema.TableName, f.Field)
		}
		sb = sb.Where(sq.Eq{column: f.Value})
	}

	sb = sb.OrderBy(b.OrderClauses(q.OrderBy)...)

	return ApplyPagination(sb, q.Limit, q.Offset), nil
}

// SearchCondition matches every whitespace-separated term against at least
// one search field, case-insensitively. It returns nil for a blank search.
func (b *Builder) SearchCondition(search string) sq.Sqlizer {
	terms := strings.Fields(search)
	if len(terms) == 0 || len(b.schema.SearchFields) == 0 {
		return nil
	}

	all := sq.And{}
	for _, term := range terms {
		pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
		anyOf := sq.Or{}
		for _, column := range b.schema.SearchFields {
			anyOf = append(anyOf, sq.Expr("LOWER("+column+") LIKE ? ESCAPE '\\'", pattern))
		}
		all = append(all, anyOf)
	}
	return all
}

// OrderClauses renders ORDER BY terms, falling back to the schema default
// when none of the requested fields is orderable. The primary key is always
// appended so that equal rows keep a stable order.
func (b *Builder) OrderClauses(orderBy []interfaces.OrderBy) []string {
	var clauses []string
	for _, order := range orderBy {
		column, ok := b.schema.OrderFields[order.Field]
		if !ok {
			continue
		}
		clauses = append(clauses, column+" "+direction(order.Direction))
	}

	if len(clauses) == 0 {
		for _, order := range b.schema.DefaultOrder {
			column, ok := b.schema.OrderFields[order.Field]
			if !ok {
				column = b.schema.Column(order.Field)
			}
			clauses = append(clauses, column+" "+direction(order.Direction))
		}
	}

	tieBreak := "ASC"
	if len(clauses) > 0 && strings.HasSuffix(clauses[0], " DESC") {
		tieBreak = "DESC"
	}
	return append(clauses, b.schema.Column("id")+" "+tieBreak)
}

// ParseOrdering turns "title,-created_at" into OrderBy terms.
func ParseOrdering(raw string) []interfaces.OrderBy {
	var out []interfaces.OrderBy
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		dir := "asc"
		if strings.HasPrefix(part, "-") {
			dir = "desc"
			part = strings.TrimPrefix(part, "-")
		}
		out = append(out, interfaces.OrderBy{Field: part, Direction: dir})
	}
	return out
}

// ApplyPagination applies limit and offset to the statement.
// SQLite rejects OFFSET without LIMIT, so an offset alone gets an unbounded limit.
func ApplyPagination(sb sq.SelectBuilder, limit, offset *int) sq.SelectBuilder {
	if limit != nil && *limit >= 0 {
		sb = sb.Limit(uint64(*limit))
	}
	if offset != nil && *offset > 0 {
		if limit == nil {
			sb = sb.Limit(math.MaxInt32)
		}
		sb = sb.Offset(uint64(*offset))
	}
	return sb
}

func direction(d string) string {
	if strings.EqualFold(d, "desc") {
		return "DESC"
	}
	return "ASC"
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
