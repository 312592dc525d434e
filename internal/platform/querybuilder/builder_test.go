package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("id", "home_team").
		From("fixtures").
		Where(Gte("match_date", "2026-09-01"), Lte("match_date", "2026-10-06")).
		OrderBy("match_date", "match_time").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id, home_team FROM fixtures WHERE match_date >= $1 AND match_date <= $2 ORDER BY match_date, match_time LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "2026-09-01" || args[1] != "2026-10-06" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_ExprAndIsNull(t *testing.T) {
	query, args, err := Select("id", "name").
		From("subjects").
		Where(Expr("profile_url <> ''"), IsNull("deleted_at")).
		OrderBy("name", "id").
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id, name FROM subjects WHERE profile_url <> '' AND deleted_at IS NULL ORDER BY name, id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 0 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("settings").
		Columns("key", "value").
		Values("provider_token", "tok-1").
		Suffix("RETURNING key").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO settings (key, value) VALUES ($1, $2) RETURNING key"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "provider_token" || args[1] != "tok-1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("fixtures").
		Set("selected", true).
		SetExpr("updated_at", "NOW()").
		Where(In("id", []any{"fx-1", "fx-2"})).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE fixtures SET selected = $1, updated_at = NOW() WHERE id IN ($2, $3)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != true || args[1] != "fx-1" || args[2] != "fx-2" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestDeleteBuilder(t *testing.T) {
	query, args, err := DeleteFrom("fixtures").
		Where(Lt("match_date", "2026-09-01")).
		ToSQL()
	if err != nil {
		t.Fatalf("build delete query: %v", err)
	}

	wantQuery := "DELETE FROM fixtures WHERE match_date < $1"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "2026-09-01" {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := DeleteFrom("fixtures").ToSQL(); err == nil {
		t.Fatalf("expected error without conditions")
	}
}

func TestInsertModel(t *testing.T) {
	type row struct {
		ID    string `db:"id"`
		Name  string `db:"name"`
		Skip  string `db:"-"`
		NoTag string
	}

	query, args, err := InsertModel("subjects", row{ID: "s1", Name: "n1", Skip: "x"}, "RETURNING id")
	if err != nil {
		t.Fatalf("build insert from model: %v", err)
	}

	wantQuery := "INSERT INTO subjects (id, name) VALUES ($1, $2) RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "s1" || args[1] != "n1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}
