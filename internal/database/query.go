package database

import (
	"fmt"

	"gorm.io/gorm"
)

// FilterOperator represents SQL comparison operators.
type FilterOperator int

// FilterOperator values.
const (
	OpEqual FilterOperator = iota
	OpNotEqual
	OpGreaterThan
	OpGreaterThanOrEqual
	OpLessThan
	OpLessThanOrEqual
	OpLike
	OpILike
	OpIn
	OpNotIn
	OpIsNull
	OpIsNotNull
	OpBetween
)

var operatorSQL = [...]string{
	OpEqual:              "=",
	OpNotEqual:           "!=",
	OpGreaterThan:        ">",
	OpGreaterThanOrEqual: ">=",
	OpLessThan:           "<",
	OpLessThanOrEqual:    "<=",
	OpLike:               "LIKE",
	OpILike:              "ILIKE",
	OpIn:                 "IN",
	OpNotIn:              "NOT IN",
	OpIsNull:             "IS NULL",
	OpIsNotNull:          "IS NOT NULL",
	OpBetween:            "BETWEEN",
}

// String returns the SQL representation of the operator.
func (o FilterOperator) String() string {
	if o < 0 || int(o) >= len(operatorSQL) {
		return "="
	}
	return operatorSQL[o]
}

// Filter represents a single query filter condition.
type Filter struct {
	field    string
	operator FilterOperator
	value    any
	value2   any // upper bound for BETWEEN
}

// NewFilter creates a new Filter.
func NewFilter(field string, operator FilterOperator, value any) Filter {
	return Filter{field: field, operator: operator, value: value}
}

// NewBetweenFilter creates a new BETWEEN Filter.
func NewBetweenFilter(field string, low, high any) Filter {
	return Filter{field: field, operator: OpBetween, value: low, value2: high}
}

// Field returns the filter field name.
func (f Filter) Field() string { return f.field }

// Operator returns the filter operator.
func (f Filter) Operator() FilterOperator { return f.operator }

// Value returns the filter value.
func (f Filter) Value() any { return f.value }

func (f Filter) apply(db *gorm.DB) *gorm.DB {
	switch f.operator {
	case OpIsNull, OpIsNotNull:
		return db.Where(fmt.Sprintf("%s %s", f.field, f.operator))
	case OpBetween:
		return db.Where(fmt.Sprintf("%s BETWEEN ? AND ?", f.field), f.value, f.value2)
	default:
		return db.Where(fmt.Sprintf("%s %s ?", f.field, f.operator), f.value)
	}
}

// SortDirection represents sort direction.
type SortDirection int

// SortDirection values.
const (
	SortAsc SortDirection = iota
	SortDesc
)

// String returns the SQL representation.
func (s SortDirection) String() string {
	if s == SortDesc {
		return "DESC"
	}
	return "ASC"
}

// OrderBy represents a sort specification.
type OrderBy struct {
	field     string
	direction SortDirection
}

// NewOrderBy creates a new OrderBy.
func NewOrderBy(field string, direction SortDirection) OrderBy {
	return OrderBy{field: field, direction: direction}
}

// Field returns the field name.
func (o OrderBy) Field() string { return o.field }

// Direction returns the sort direction.
func (o OrderBy) Direction() SortDirection { return o.direction }

// rawWhere is a literal WHERE fragment with positional arguments, for
// clauses the Filter vocabulary cannot express.
type rawWhere struct {
	expr string
	args []any
}

// Query represents a database query with filters, ordering, and
// pagination, translated to GORM clauses by Apply.
type Query struct {
	filters []Filter
	raw     []rawWhere
	orderBy []OrderBy
	limit   int
	offset  int
}

// NewQuery creates a new empty Query.
func NewQuery() Query {
	return Query{}
}

// Where adds a filter condition.
func (q Query) Where(field string, operator FilterOperator, value any) Query {
	q.filters = append(q.filters, NewFilter(field, operator, value))
	return q
}

// WhereBetween adds a BETWEEN filter.
func (q Query) WhereBetween(field string, low, high any) Query {
	q.filters = append(q.filters, NewBetweenFilter(field, low, high))
	return q
}

// WhereExpr adds a literal WHERE fragment with positional arguments.
func (q Query) WhereExpr(expr string, args ...any) Query {
	q.raw = append(q.raw, rawWhere{expr: expr, args: args})
	return q
}

// Comparison shorthands.

func (q Query) Equal(field string, v any) Query              { return q.Where(field, OpEqual, v) }
func (q Query) NotEqual(field string, v any) Query           { return q.Where(field, OpNotEqual, v) }
func (q Query) GreaterThan(field string, v any) Query        { return q.Where(field, OpGreaterThan, v) }
func (q Query) GreaterThanOrEqual(field string, v any) Query { return q.Where(field, OpGreaterThanOrEqual, v) }
func (q Query) LessThan(field string, v any) Query           { return q.Where(field, OpLessThan, v) }
func (q Query) LessThanOrEqual(field string, v any) Query    { return q.Where(field, OpLessThanOrEqual, v) }
func (q Query) Like(field, pattern string) Query             { return q.Where(field, OpLike, pattern) }
func (q Query) ILike(field, pattern string) Query            { return q.Where(field, OpILike, pattern) }
func (q Query) In(field string, values any) Query            { return q.Where(field, OpIn, values) }
func (q Query) NotIn(field string, values any) Query         { return q.Where(field, OpNotIn, values) }
func (q Query) IsNull(field string) Query                    { return q.Where(field, OpIsNull, nil) }
func (q Query) IsNotNull(field string) Query                 { return q.Where(field, OpIsNotNull, nil) }

// Order adds an ordering specification.
func (q Query) Order(field string, direction SortDirection) Query {
	q.orderBy = append(q.orderBy, NewOrderBy(field, direction))
	return q
}

// OrderAsc adds ascending ordering.
func (q Query) OrderAsc(field string) Query { return q.Order(field, SortAsc) }

// OrderDesc adds descending ordering.
func (q Query) OrderDesc(field string) Query { return q.Order(field, SortDesc) }

// Limit sets the result limit.
func (q Query) Limit(limit int) Query {
	q.limit = limit
	return q
}

// Offset sets the result offset.
func (q Query) Offset(offset int) Query {
	q.offset = offset
	return q
}

// Paginate sets both limit and offset for pagination.
func (q Query) Paginate(page, pageSize int) Query {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	q.limit = pageSize
	q.offset = (page - 1) * pageSize
	return q
}

// Unpaged returns a copy of the query without ordering, limit, and
// offset. Used for COUNT and DELETE statements, which reject them.
func (q Query) Unpaged() Query {
	q.orderBy = nil
	q.limit = 0
	q.offset = 0
	return q
}

// Filters returns all filter conditions.
func (q Query) Filters() []Filter {
	result := make([]Filter, len(q.filters))
	copy(result, q.filters)
	return result
}

// Orders returns all ordering specifications.
func (q Query) Orders() []OrderBy {
	result := make([]OrderBy, len(q.orderBy))
	copy(result, q.orderBy)
	return result
}

// LimitValue returns the limit value (0 means no limit).
func (q Query) LimitValue() int { return q.limit }

// OffsetValue returns the offset value.
func (q Query) OffsetValue() int { return q.offset }

// Apply applies the query to a GORM database session.
func (q Query) Apply(db *gorm.DB) *gorm.DB {
	for _, filter := range q.filters {
		db = filter.apply(db)
	}
	for _, w := range q.raw {
		db = db.Where(w.expr, w.args...)
	}
	for _, order := range q.orderBy {
		db = db.Order(fmt.Sprintf("%s %s", order.field, order.direction))
	}
	if q.limit > 0 {
		db = db.Limit(q.limit)
	}
	if q.offset > 0 {
		db = db.Offset(q.offset)
	}
	return db
}
