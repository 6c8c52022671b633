package database

import (
	"github.com/kodit-ai/kodit/domain/repository"
	"gorm.io/gorm"
)

// queryFrom translates a domain-level repository.Query into a database
// Query ready to be applied to a GORM session.
func queryFrom(q repository.Query) Query {
	out := NewQuery()

	for _, cond := range q.Conditions() {
		if cond.In() {
			out = out.In(cond.Field(), cond.Value())
		} else {
			out = out.Equal(cond.Field(), cond.Value())
		}
	}

	for _, w := range q.Wheres() {
		out = out.WhereExpr(w.Expr(), w.Args()...)
	}

	for _, ord := range q.Orders() {
		if ord.Ascending() {
			out = out.OrderAsc(ord.Field())
		} else {
			out = out.OrderDesc(ord.Field())
		}
	}

	return out.Limit(q.LimitValue()).Offset(q.OffsetValue())
}

// ApplyOptions builds a query from the given options and applies it to a
// GORM session.
func ApplyOptions(db *gorm.DB, options ...repository.Option) *gorm.DB {
	return queryFrom(repository.Build(options...)).Apply(db)
}

// ApplyConditions applies only the WHERE clauses (no limit, offset, or
// ordering), as COUNT and DELETE statements require.
func ApplyConditions(db *gorm.DB, options ...repository.Option) *gorm.DB {
	return queryFrom(repository.Build(options...)).Unpaged().Apply(db)
}
