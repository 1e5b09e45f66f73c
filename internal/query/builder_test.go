package query

import (
	"reflect"
	"testing"
)

func TestBuildPlain(t *testing.T) {
	q := From("Author_Main", "Author_Main.UUID", "Author_Main.Author").Build()

	want := "SELECT Author_Main.UUID, Author_Main.Author FROM Author_Main"
	if q.SQL != want {
		t.Errorf("SQL = %q, want %q", q.SQL, want)
	}
	if len(q.Args) != 0 {
		t.Errorf("Args = %v, want none", q.Args)
	}
}

func TestWhereClausesANDCombine(t *testing.T) {
	q := From("Author_Main").
		WhereNotNull("Author_Main.Photo").
		WhereNotEqual("Author_Main.Author", "deleted").
		Build()

	want := "SELECT * FROM Author_Main WHERE Author_Main.Photo IS NOT NULL AND Author_Main.Author != ?"
	if q.SQL != want {
		t.Errorf("SQL = %q, want %q", q.SQL, want)
	}
	if !reflect.DeepEqual(q.Args, []any{"deleted"}) {
		t.Errorf("Args = %v, want [deleted]", q.Args)
	}
}

func TestOrderByLastWriteWins(t *testing.T) {
	q := From("Author_Main").
		OrderBy(OrderAsc, "Author_Main.Author").
		OrderBy(OrderDesc, "Author_Main.UUID").
		Build()

	want := "SELECT * FROM Author_Main ORDER BY Author_Main.UUID DESC"
	if q.SQL != want {
		t.Errorf("SQL = %q, want %q", q.SQL, want)
	}
}

func TestPaginateContract(t *testing.T) {
	tests := []struct {
		name       string
		page       int64
		pageSize   int64
		wantLimit  int64
		wantOffset int64
	}{
		{name: "first page", page: 1, pageSize: 10, wantLimit: 10, wantOffset: 0},
		{name: "third page", page: 3, pageSize: 40, wantLimit: 40, wantOffset: 80},
		{name: "single row pages", page: 5, pageSize: 1, wantLimit: 1, wantOffset: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := From("Author_Main").Paginate(tt.page, tt.pageSize).Build()

			want := "SELECT * FROM Author_Main LIMIT ? OFFSET ?"
			if q.SQL != want {
				t.Errorf("SQL = %q, want %q", q.SQL, want)
			}
			if !reflect.DeepEqual(q.Args, []any{tt.wantLimit, tt.wantOffset}) {
				t.Errorf("Args = %v, want [%d %d]", q.Args, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}

func TestPaginateIdempotent(t *testing.T) {
	b := From("Author_Main").Paginate(2, 40)

	first := b.Build()
	second := b.Paginate(2, 40).Build()

	if first.SQL != second.SQL || !reflect.DeepEqual(first.Args, second.Args) {
		t.Errorf("repeated Paginate(2, 40) diverged: %v vs %v", first, second)
	}
}

func TestSearchILike(t *testing.T) {
	q := From("Author_Main").SearchILike("%naki%", "Author_Main.Author").Build()

	want := "SELECT * FROM Author_Main WHERE LOWER(Author_Main.Author) LIKE LOWER(?)"
	if q.SQL != want {
		t.Errorf("SQL = %q, want %q", q.SQL, want)
	}
	if !reflect.DeepEqual(q.Args, []any{"%naki%"}) {
		t.Errorf("Args = %v, want [%%naki%%]", q.Args)
	}
}

func TestWithAndFiltersSkipsNil(t *testing.T) {
	photo := NotNull("Author_Main.Photo")
	tag := ILike("Author_Main.Tags", "%原創%")

	q := From("Author_Main").WithAndFilters(&photo, nil, &tag).Build()

	want := "SELECT * FROM Author_Main WHERE Author_Main.Photo IS NOT NULL AND LOWER(Author_Main.Tags) LIKE LOWER(?)"
	if q.SQL != want {
		t.Errorf("SQL = %q, want %q", q.SQL, want)
	}
	if len(q.Args) != 1 {
		t.Errorf("Args = %v, want one arg", q.Args)
	}
}

func TestFilterByEventID(t *testing.T) {
	q := From("Author_Main").
		Join("JOIN Event_Artist ON Event_Artist.Artist_ID = Author_Main.UUID").
		FilterByEventID(7).
		Build()

	want := "SELECT * FROM Author_Main JOIN Event_Artist ON Event_Artist.Artist_ID = Author_Main.UUID WHERE Event_Artist.Event_ID = ?"
	if q.SQL != want {
		t.Errorf("SQL = %q, want %q", q.SQL, want)
	}
	if !reflect.DeepEqual(q.Args, []any{int64(7)}) {
		t.Errorf("Args = %v, want [7]", q.Args)
	}
}

func TestBuilderImmutability(t *testing.T) {
	base := From("Author_Main").WhereNotNull("Author_Main.Photo")

	left := base.WhereNotEqual("Author_Main.Author", "a").Build()
	right := base.SearchILike("%b%", "Author_Main.Author").Build()

	if left.SQL == right.SQL {
		t.Fatal("sibling builders produced identical SQL")
	}
	// base itself must be unchanged by either derivation
	baseQ := base.Build()
	want := "SELECT * FROM Author_Main WHERE Author_Main.Photo IS NOT NULL"
	if baseQ.SQL != want {
		t.Errorf("base mutated: SQL = %q, want %q", baseQ.SQL, want)
	}
}

func TestBuildCountIgnoresPagination(t *testing.T) {
	q := From("Author_Main").
		WhereNotNull("Author_Main.Photo").
		OrderBy(OrderDesc, "Author_Main.UUID").
		Paginate(3, 40).
		BuildCount()

	want := "SELECT COUNT(*) FROM Author_Main WHERE Author_Main.Photo IS NOT NULL"
	if q.SQL != want {
		t.Errorf("SQL = %q, want %q", q.SQL, want)
	}
	if len(q.Args) != 0 {
		t.Errorf("Args = %v, want none", q.Args)
	}
}
