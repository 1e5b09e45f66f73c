// Package query composes select statements incrementally. Builders are
// immutable values: every composition returns a new builder, so a partially
// composed query can be reused and extended along different branches.
//
// Clause semantics: where-clauses AND-combine across calls; order, limit and
// offset are last-write-wins. Execution is delegated to the data-access
// layer; Build only produces SQL text and its arguments.
package query

import (
	"fmt"
	"strings"
)

// Sort directions accepted by OrderBy.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// Predicate is a single where-clause fragment with its bound arguments.
type Predicate struct {
	SQL  string
	Args []any
}

// ILike returns a case-insensitive contains predicate. The pattern is
// caller-supplied and expected to already carry %...% wildcards.
func ILike(column, pattern string) Predicate {
	return Predicate{
		SQL:  fmt.Sprintf("LOWER(%s) LIKE LOWER(?)", column),
		Args: []any{pattern},
	}
}

// NotNull returns a predicate matching rows where column is not null.
func NotNull(column string) Predicate {
	return Predicate{SQL: fmt.Sprintf("%s IS NOT NULL", column)}
}

// NotEqual returns a predicate matching rows where column differs from value.
func NotEqual(column string, value any) Predicate {
	return Predicate{SQL: fmt.Sprintf("%s != ?", column), Args: []any{value}}
}

// Equal returns a predicate matching rows where column equals value.
func Equal(column string, value any) Predicate {
	return Predicate{SQL: fmt.Sprintf("%s = ?", column), Args: []any{value}}
}

// Query is a finalized statement ready for execution.
type Query struct {
	SQL  string
	Args []any
}

// Builder describes a select statement under composition.
type Builder struct {
	table      string
	columns    []string
	joins      []string
	predicates []Predicate
	orderBy    string
	limit      int64
	offset     int64
	hasLimit   bool
}

// From starts a builder selecting columns from table. With no columns, *.
func From(table string, columns ...string) Builder {
	return Builder{table: table, columns: columns}
}

// Join appends a join clause, e.g. "JOIN Event_Artist ON ...".
func (b Builder) Join(clause string) Builder {
	b.joins = appendCopy(b.joins, clause)
	return b
}

// Where AND-combines a predicate with any previously added clauses.
func (b Builder) Where(p Predicate) Builder {
	b.predicates = appendCopy(b.predicates, p)
	return b
}

// FilterByEventID restricts rows to a given event's participation records.
func (b Builder) FilterByEventID(eventID int64) Builder {
	return b.Where(Equal("Event_Artist.Event_ID", eventID))
}

// WhereNotNull adds an IS NOT NULL clause on column.
func (b Builder) WhereNotNull(column string) Builder {
	return b.Where(NotNull(column))
}

// WhereNotEqual adds a != clause on column.
func (b Builder) WhereNotEqual(column string, value any) Builder {
	return b.Where(NotEqual(column, value))
}

// SearchILike adds a case-insensitive substring match on column. The pattern
// must already be wrapped in %...% wildcards by the caller.
func (b Builder) SearchILike(pattern, column string) Builder {
	return b.Where(ILike(column, pattern))
}

// WithAndFilters AND-combines a set of optional predicates, skipping nils.
func (b Builder) WithAndFilters(predicates ...*Predicate) Builder {
	for _, p := range predicates {
		if p == nil {
			continue
		}
		b = b.Where(*p)
	}
	return b
}

// OrderBy sets the sort column and direction. Only one order is active at a
// time; a later call replaces an earlier one. Unknown directions fall back
// to ascending.
func (b Builder) OrderBy(direction, column string) Builder {
	dir := "ASC"
	if strings.EqualFold(direction, OrderDesc) {
		dir = "DESC"
	}
	b.orderBy = fmt.Sprintf("%s %s", column, dir)
	return b
}

// Paginate sets limit and offset from a 1-indexed page. The builder does not
// validate page; callers clamp page < 1 to 1 before composing.
func (b Builder) Paginate(page, pageSize int64) Builder {
	b.limit = pageSize
	b.offset = (page - 1) * pageSize
	b.hasLimit = true
	return b
}

// Build finalizes the composed query.
func (b Builder) Build() Query {
	var sb strings.Builder
	var args []any

	cols := "*"
	if len(b.columns) > 0 {
		cols = strings.Join(b.columns, ", ")
	}
	fmt.Fprintf(&sb, "SELECT %s FROM %s", cols, b.table)

	for _, j := range b.joins {
		sb.WriteString(" ")
		sb.WriteString(j)
	}

	args = b.writeWhere(&sb, args)

	if b.orderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(b.orderBy)
	}

	if b.hasLimit {
		sb.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, b.limit, b.offset)
	}

	return Query{SQL: sb.String(), Args: args}
}

// BuildCount finalizes a COUNT(*) variant of the query, ignoring order and
// pagination.
func (b Builder) BuildCount() Query {
	var sb strings.Builder
	var args []any

	fmt.Fprintf(&sb, "SELECT COUNT(*) FROM %s", b.table)
	for _, j := range b.joins {
		sb.WriteString(" ")
		sb.WriteString(j)
	}
	args = b.writeWhere(&sb, args)

	return Query{SQL: sb.String(), Args: args}
}

func (b Builder) writeWhere(sb *strings.Builder, args []any) []any {
	if len(b.predicates) == 0 {
		return args
	}
	sb.WriteString(" WHERE ")
	for i, p := range b.predicates {
		if i > 0 {
			sb.WriteString(" AND ")
		}
		sb.WriteString(p.SQL)
		args = append(args, p.Args...)
	}
	return args
}

// appendCopy appends to a fresh backing array so sibling builders derived
// from the same parent never observe each other's clauses.
func appendCopy[T any](s []T, v T) []T {
	out := make([]T, len(s), len(s)+1)
	copy(out, s)
	return append(out, v)
}
