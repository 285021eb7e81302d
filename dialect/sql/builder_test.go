package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repairtrack/repairdb/dialect"
)

func TestSelector(t *testing.T) {
	tests := []struct {
		name      string
		input     func() (string, []any)
		wantQuery string
		wantArgs  []any
	}{
		{
			name: "postgres placeholders",
			input: func() (string, []any) {
				s := Dialect(dialect.Postgres).Select().From("users").As("t0")
				return s.Select(s.C("id"), s.C("email")).
					Where(EQ(s.C("email"), "a@b.c")).
					Where(GT(s.C("id"), 3)).
					OrderBy(Asc(s.C("id"))).
					Limit(10).
					Query()
			},
			wantQuery: `SELECT "t0"."id", "t0"."email" FROM "users" AS "t0" WHERE (("t0"."email" = $1) AND ("t0"."id" > $2)) ORDER BY "t0"."id" ASC LIMIT 10`,
			wantArgs:  []any{"a@b.c", 3},
		},
		{
			name: "mysql quoting and offset",
			input: func() (string, []any) {
				return Dialect(dialect.MySQL).Select("id").From("printers").
					Where(In("owner_id", 1, 2)).
					Offset(5).
					Query()
			},
			wantQuery: "SELECT `id` FROM `printers` WHERE `owner_id` IN (?, ?) LIMIT 18446744073709551615 OFFSET 5",
			wantArgs:  []any{1, 2},
		},
		{
			name: "sqlite offset without limit",
			input: func() (string, []any) {
				return Dialect(dialect.SQLite).Select("id").From("notes").Offset(2).Query()
			},
			wantQuery: `SELECT "id" FROM "notes" LIMIT -1 OFFSET 2`,
		},
		{
			name: "empty in",
			input: func() (string, []any) {
				return Dialect(dialect.SQLite).Select("id").From("notes").
					Where(Or(In("id"), NotIn("id"))).
					Query()
			},
			wantQuery: `SELECT "id" FROM "notes" WHERE ((1 = 0) OR (1 = 1))`,
		},
		{
			name: "exists subquery",
			input: func() (string, []any) {
				p := Dialect(dialect.Postgres).Select().From("repair_parts").As("t1")
				p.Select("1").Where(ColumnsEQ(p.C("repair_request_id"), `"t0"."id"`)).Where(GT(p.C("quantity"), 2))
				s := Dialect(dialect.Postgres).Select().From("repair_requests").As("t0")
				return s.Select(s.C("id")).Where(Exists(p)).Query()
			},
			wantQuery: `SELECT "t0"."id" FROM "repair_requests" AS "t0" WHERE EXISTS (SELECT 1 FROM "repair_parts" AS "t1" WHERE (("t1"."repair_request_id" = "t0"."id") AND ("t1"."quantity" > $1)))`,
			wantArgs:  []any{2},
		},
		{
			name: "group by having",
			input: func() (string, []any) {
				s := Dialect(dialect.SQLite).Select().From("repair_parts").As("t0")
				return s.Select(s.C("part_name"), As(Sum(s.C("quantity")), "agg_0")).
					GroupBy(s.C("part_name")).
					Having(Compare(Sum(s.C("quantity")), ">", 5)).
					OrderBy(Desc(s.C("part_name"))).
					Query()
			},
			wantQuery: `SELECT "t0"."part_name", SUM("t0"."quantity") AS agg_0 FROM "repair_parts" AS "t0" GROUP BY "t0"."part_name" HAVING SUM("t0"."quantity") > ? ORDER BY "t0"."part_name" DESC`,
			wantArgs:  []any{5},
		},
		{
			name: "subquery source",
			input: func() (string, []any) {
				sub := Dialect(dialect.SQLite).Select("id").From("users").Limit(3)
				return Dialect(dialect.SQLite).Select(Count("*")).FromSelect(sub).As("t").Query()
			},
			wantQuery: `SELECT COUNT(*) FROM (SELECT "id" FROM "users" LIMIT 3) AS "t"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := tt.input()
			assert.Equal(t, tt.wantQuery, query)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestStringMatch(t *testing.T) {
	tests := []struct {
		dialect   string
		pred      Predicate
		wantQuery string
		wantArgs  []any
	}{
		{dialect.SQLite, Contains("model", "50%_x"), `"model" GLOB ?`, []any{"*50%_x*"}},
		{dialect.SQLite, HasPrefix("model", "a*b"), `"model" GLOB ?`, []any{"a[*]b*"}},
		{dialect.Postgres, HasSuffix("model", "50%"), `"model" LIKE $1 ESCAPE '\'`, []any{`%50\%`}},
		{dialect.MySQL, Contains("model", "x"), "`model` LIKE BINARY ? ESCAPE '\\\\'", []any{"%x%"}},
		{dialect.SQLite, ContainsFold("model", "LaSeR"), `repairdb_fold("model") LIKE ? ESCAPE '\'`, []any{"%laser%"}},
		{dialect.MySQL, HasPrefixFold("model", "ÉCRAN"), "LOWER(`model`) LIKE ? ESCAPE '\\\\'", []any{"écran%"}},
		{dialect.Postgres, EqualFold("email", "A@B.C"), `LOWER("email") = $1`, []any{"a@b.c"}},
	}
	for _, tt := range tests {
		t.Run(tt.dialect, func(t *testing.T) {
			b := NewBuilder(tt.dialect)
			tt.pred(b)
			query, args := b.Query()
			assert.Equal(t, tt.wantQuery, query)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args := Dialect(dialect.Postgres).Insert("users").
		Columns("name", "email").
		Values("a", "a@b.c").
		Returning("id").
		OnConflictDoNothing().
		Query()
	assert.Equal(t, `INSERT INTO "users" ("name", "email") VALUES ($1, $2) ON CONFLICT DO NOTHING RETURNING "id"`, query)
	assert.Equal(t, []any{"a", "a@b.c"}, args)

	query, _ = Dialect(dialect.MySQL).Insert("roles").Columns("name").Values("x").Returning("id").OnConflictDoNothing().Query()
	assert.Equal(t, "INSERT IGNORE INTO `roles` (`name`) VALUES (?)", query)

	query, _ = Dialect(dialect.SQLite).Insert("roles").Query()
	assert.Equal(t, `INSERT INTO "roles" DEFAULT VALUES`, query)
}

func TestUpdateBuilder(t *testing.T) {
	u := Dialect(dialect.MySQL).Update("repair_parts")
	require.True(t, u.Empty())
	query, args := u.Set("part_name", "drum").
		Add("quantity", 1).
		Div("price", 2, false).
		Div("quantity", 2, true).
		SetNull("note").
		Where(EQ("id", 7)).
		Query()
	assert.Equal(t, "UPDATE `repair_parts` SET `part_name` = ?, `quantity` = `quantity` + ?, `price` = `price` / ?, `quantity` = `quantity` DIV ?, `note` = NULL WHERE `id` = ?", query)
	assert.Equal(t, []any{"drum", 1, 2, 2, 7}, args)
}

func TestDeleteBuilder(t *testing.T) {
	query, args := Dialect(dialect.Postgres).Delete("notes").Where(In("id", 1, 2)).Query()
	assert.Equal(t, `DELETE FROM "notes" WHERE "id" IN ($1, $2)`, query)
	assert.Equal(t, []any{1, 2}, args)
}

func TestRaw(t *testing.T) {
	query, args, err := NewRaw("SELECT * FROM users WHERE email = ? AND name <> '?' AND id > ?", "a@b.c", 1).Query(dialect.Postgres)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users WHERE email = $1 AND name <> '?' AND id > $2", query)
	assert.Equal(t, []any{"a@b.c", 1}, args)

	query, _, err = NewRaw("SELECT ?", 1).Query(dialect.SQLite)
	require.NoError(t, err)
	assert.Equal(t, "SELECT ?", query)

	_, _, err = NewRaw("SELECT ?, ?", 1).Query(dialect.MySQL)
	require.Error(t, err)
}
