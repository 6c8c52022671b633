package database

import (
	"context"
	"path/filepath"
	"testing"
)

// openTestDatabase opens a fresh SQLite database and runs the given DDL
// and seed statements.
func openTestDatabase(t *testing.T, stmts ...string) Database {
	t.Helper()

	ctx := context.Background()
	db, err := NewDatabase(ctx, "sqlite:///"+filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewDatabase: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	for _, stmt := range stmts {
		if err := db.Session(ctx).Exec(stmt).Error; err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}
	return db
}

func TestFilterOperator_String(t *testing.T) {
	tests := []struct {
		op   FilterOperator
		want string
	}{
		{OpEqual, "="},
		{OpNotEqual, "!="},
		{OpGreaterThan, ">"},
		{OpGreaterThanOrEqual, ">="},
		{OpLessThan, "<"},
		{OpLessThanOrEqual, "<="},
		{OpLike, "LIKE"},
		{OpILike, "ILIKE"},
		{OpIn, "IN"},
		{OpNotIn, "NOT IN"},
		{OpIsNull, "IS NULL"},
		{OpIsNotNull, "IS NOT NULL"},
		{OpBetween, "BETWEEN"},
		{FilterOperator(99), "="}, // out of range falls back to equality
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.op.String(); got != tt.want {
				t.Errorf("FilterOperator.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSortDirection_String(t *testing.T) {
	if got := SortAsc.String(); got != "ASC" {
		t.Errorf("SortAsc.String() = %v, want ASC", got)
	}
	if got := SortDesc.String(); got != "DESC" {
		t.Errorf("SortDesc.String() = %v, want DESC", got)
	}
}

func TestFilterAccessors(t *testing.T) {
	f := NewFilter("name", OpEqual, "test")
	if f.Field() != "name" || f.Operator() != OpEqual || f.Value() != "test" {
		t.Errorf("NewFilter: got (%s, %v, %v)", f.Field(), f.Operator(), f.Value())
	}

	b := NewBetweenFilter("age", 18, 65)
	if b.Field() != "age" || b.Operator() != OpBetween || b.Value() != 18 {
		t.Errorf("NewBetweenFilter: got (%s, %v, %v)", b.Field(), b.Operator(), b.Value())
	}

	o := NewOrderBy("created_at", SortDesc)
	if o.Field() != "created_at" || o.Direction() != SortDesc {
		t.Errorf("NewOrderBy: got (%s, %v)", o.Field(), o.Direction())
	}
}

func TestQuery_Chaining(t *testing.T) {
	q := NewQuery().
		Equal("status", "active").
		GreaterThan("age", 18).
		In("role", []string{"admin", "user"}).
		OrderDesc("created_at").
		Limit(10).
		Offset(20)

	if got := len(q.Filters()); got != 3 {
		t.Errorf("expected 3 filters, got %d", got)
	}
	if got := len(q.Orders()); got != 1 {
		t.Errorf("expected 1 order, got %d", got)
	}
	if q.LimitValue() != 10 {
		t.Errorf("LimitValue() = %v, want 10", q.LimitValue())
	}
	if q.OffsetValue() != 20 {
		t.Errorf("OffsetValue() = %v, want 20", q.OffsetValue())
	}
}

func TestQuery_Paginate(t *testing.T) {
	tests := []struct {
		page     int
		pageSize int
		wantLim  int
		wantOff  int
	}{
		{1, 10, 10, 0},
		{2, 10, 10, 10},
		{3, 25, 25, 50},
		{0, 10, 10, 0},  // page < 1 defaults to 1
		{1, 0, 10, 0},   // pageSize < 1 defaults to 10
		{-1, -5, 10, 0}, // both invalid default
	}

	for _, tt := range tests {
		q := NewQuery().Paginate(tt.page, tt.pageSize)
		if q.LimitValue() != tt.wantLim || q.OffsetValue() != tt.wantOff {
			t.Errorf("Paginate(%d, %d) = limit %d offset %d, want %d/%d",
				tt.page, tt.pageSize, q.LimitValue(), q.OffsetValue(), tt.wantLim, tt.wantOff)
		}
	}
}

func TestQuery_Unpaged(t *testing.T) {
	q := NewQuery().
		Equal("status", "active").
		OrderDesc("created_at").
		Limit(10).
		Offset(20).
		Unpaged()

	if got := len(q.Filters()); got != 1 {
		t.Errorf("expected the filter to survive, got %d", got)
	}
	if len(q.Orders()) != 0 || q.LimitValue() != 0 || q.OffsetValue() != 0 {
		t.Errorf("Unpaged left ordering or pagination behind: %v %d %d",
			q.Orders(), q.LimitValue(), q.OffsetValue())
	}
}

func TestQuery_AllFilterTypes(t *testing.T) {
	q := NewQuery().
		Equal("a", 1).
		NotEqual("b", 2).
		GreaterThan("c", 3).
		GreaterThanOrEqual("d", 4).
		LessThan("e", 5).
		LessThanOrEqual("f", 6).
		Like("g", "%test%").
		ILike("h", "%TEST%").
		In("i", []int{1, 2, 3}).
		NotIn("j", []int{4, 5, 6}).
		IsNull("k").
		IsNotNull("l").
		WhereBetween("m", 10, 20)

	wantOps := []FilterOperator{
		OpEqual, OpNotEqual, OpGreaterThan, OpGreaterThanOrEqual,
		OpLessThan, OpLessThanOrEqual, OpLike, OpILike,
		OpIn, OpNotIn, OpIsNull, OpIsNotNull, OpBetween,
	}

	filters := q.Filters()
	if len(filters) != len(wantOps) {
		t.Fatalf("expected %d filters, got %d", len(wantOps), len(filters))
	}
	for i, filter := range filters {
		if filter.Operator() != wantOps[i] {
			t.Errorf("filter %d: Operator() = %v, want %v", i, filter.Operator(), wantOps[i])
		}
	}
}

func TestQuery_OrderMethods(t *testing.T) {
	q := NewQuery().
		OrderAsc("name").
		OrderDesc("created_at").
		Order("updated_at", SortAsc)

	orders := q.Orders()
	if len(orders) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(orders))
	}

	want := []OrderBy{
		NewOrderBy("name", SortAsc),
		NewOrderBy("created_at", SortDesc),
		NewOrderBy("updated_at", SortAsc),
	}
	for i, ord := range orders {
		if ord != want[i] {
			t.Errorf("order %d: got %s %v, want %s %v",
				i, ord.Field(), ord.Direction(), want[i].Field(), want[i].Direction())
		}
	}
}

func TestQuery_Apply(t *testing.T) {
	db := openTestDatabase(t,
		`CREATE TABLE test_users (id INTEGER PRIMARY KEY, name TEXT, age INTEGER, status TEXT)`,
		`INSERT INTO test_users (name, age, status) VALUES
			('Alice', 30, 'active'),
			('Bob', 25, 'inactive'),
			('Charlie', 35, 'active')`,
	)

	q := NewQuery().
		Equal("status", "active").
		GreaterThan("age", 28).
		OrderDesc("age").
		Limit(10)

	type User struct {
		ID     int64
		Name   string
		Age    int
		Status string
	}

	var users []User
	if err := q.Apply(db.Session(context.Background()).Table("test_users")).Find(&users).Error; err != nil {
		t.Fatalf("query: %v", err)
	}

	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users[0].Name != "Charlie" || users[1].Name != "Alice" {
		t.Errorf("expected Charlie then Alice by descending age, got %s then %s", users[0].Name, users[1].Name)
	}
}

func TestQuery_ApplyWithBetween(t *testing.T) {
	db := openTestDatabase(t,
		`CREATE TABLE test_products (id INTEGER PRIMARY KEY, name TEXT, price INTEGER)`,
		`INSERT INTO test_products (name, price) VALUES ('Widget', 50), ('Gadget', 100), ('Gizmo', 150)`,
	)

	q := NewQuery().WhereBetween("price", 50, 100)

	type Product struct {
		ID    int64
		Name  string
		Price int
	}

	var products []Product
	if err := q.Apply(db.Session(context.Background()).Table("test_products")).Find(&products).Error; err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(products) != 2 {
		t.Errorf("expected 2 products, got %d", len(products))
	}
}

func TestQuery_ApplyWithIn(t *testing.T) {
	db := openTestDatabase(t,
		`CREATE TABLE test_items (id INTEGER PRIMARY KEY, name TEXT)`,
		`INSERT INTO test_items (name) VALUES ('a'), ('b'), ('c'), ('d')`,
	)

	q := NewQuery().In("name", []string{"a", "c"})

	type Item struct {
		ID   int64
		Name string
	}

	var items []Item
	if err := q.Apply(db.Session(context.Background()).Table("test_items")).Find(&items).Error; err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("expected 2 items, got %d", len(items))
	}
}

func TestQuery_ApplyWithRawWhere(t *testing.T) {
	db := openTestDatabase(t,
		`CREATE TABLE test_items (id INTEGER PRIMARY KEY, name TEXT)`,
		`INSERT INTO test_items (name) VALUES ('alpha'), ('beta'), ('gamma')`,
	)

	q := NewQuery().WhereExpr("name LIKE ? OR name LIKE ?", "al%", "ga%")

	type Item struct {
		ID   int64
		Name string
	}

	var items []Item
	if err := q.Apply(db.Session(context.Background()).Table("test_items")).Find(&items).Error; err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("expected 2 items, got %d", len(items))
	}
}
