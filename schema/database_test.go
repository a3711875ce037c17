package schema_test

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/huandu/go-sqlbuilder"
	_ "github.com/mattn/go-sqlite3"
	"github.com/xcono/bread/schema"
	_ "modernc.org/sqlite"
)

func TestCreateTable(t *testing.T) {
	s := schema.MustNew(
		schema.Field{Name: "name"},
		schema.Field{Name: "slug", MaxLength: 10},
		schema.Field{Name: "size", Type: schema.Int, Optional: true},
	)

	tt := []struct {
		flavor   sqlbuilder.Flavor
		strategy schema.KeyStrategy
		contains []string
	}{
		{sqlbuilder.MySQL, schema.KeyAuto, []string{"id BIGINT AUTO_INCREMENT PRIMARY KEY", "name TEXT NOT NULL", "slug VARCHAR(10) NOT NULL", "size BIGINT)"}},
		{sqlbuilder.PostgreSQL, schema.KeyAuto, []string{"id BIGSERIAL PRIMARY KEY"}},
		{sqlbuilder.SQLite, schema.KeyAuto, []string{"id INTEGER PRIMARY KEY AUTOINCREMENT", "size INTEGER)"}},
		{sqlbuilder.PostgreSQL, schema.KeyUUID, []string{"id VARCHAR(36) PRIMARY KEY"}},
	}

	for _, tc := range tt {
		t.Run(tc.flavor.String()+"_"+string(tc.strategy), func(t *testing.T) {
			ddl, _ := schema.CreateTable(tc.flavor, "organisations", "id", tc.strategy, s)
			if !strings.HasPrefix(ddl, "CREATE TABLE IF NOT EXISTS organisations") {
				t.Errorf("unexpected ddl: %s", ddl)
			}
			for _, part := range tc.contains {
				if !strings.Contains(ddl, part) {
					t.Errorf("expected %q in %s", part, ddl)
				}
			}
		})
	}
}

func TestSQLiteTablesAndDiff(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	defer db.Close()

	declared := schema.MustNew(
		schema.Field{Name: "name"},
		schema.Field{Name: "slug", MaxLength: 10},
	)
	ddl, _ := schema.CreateTable(sqlbuilder.SQLite, "organisations", "id", schema.KeyAuto, declared)
	if _, err := db.Exec(ddl); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}

	tables, err := schema.NewSQLite(db).Tables(context.Background(), "organisations", "missing")
	if err != nil {
		t.Fatalf("Tables: %v", err)
	}
	if len(tables) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(tables))
	}
	if got := len(tables[0].Columns); got != 3 {
		t.Errorf("expected 3 columns, got %d", got)
	}

	if mm := schema.Diff(tables[0], "id", declared); len(mm) != 0 {
		t.Errorf("expected no mismatches, got %v", mm)
	}

	if mm := schema.Diff(tables[1], "id", declared); len(mm) != 1 || mm[0].Reason != "table does not exist" {
		t.Errorf("expected missing table, got %v", mm)
	}

	drifted := schema.MustNew(
		schema.Field{Name: "name", Type: schema.Int},
		schema.Field{Name: "slug", Optional: true},
		schema.Field{Name: "owner"},
	)
	mm := schema.Diff(tables[0], "id", drifted)
	if len(mm) != 3 {
		t.Fatalf("expected 3 mismatches, got %v", mm)
	}
	for i, field := range []string{"name", "slug", "owner"} {
		if mm[i].Field != field {
			t.Errorf("mismatch %d: expected %s, got %s", i, field, mm[i].Field)
		}
	}
}

func TestMySQLTables(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT DATABASE\\(\\)").
		WillReturnRows(sqlmock.NewRows([]string{"db"}).AddRow("app"))
	mock.ExpectQuery("FROM INFORMATION_SCHEMA.COLUMNS").
		WithArgs("app", "organisations").
		WillReturnRows(sqlmock.NewRows([]string{"COLUMN_NAME", "DATA_TYPE", "IS_NULLABLE", "COLUMN_DEFAULT", "COLUMN_KEY", "EXTRA"}).
			AddRow("id", "bigint", "NO", nil, "PRI", "auto_increment").
			AddRow("slug", "varchar", "NO", nil, "UNI", ""))
	mock.ExpectQuery("FROM INFORMATION_SCHEMA.STATISTICS").
		WithArgs("app", "organisations").
		WillReturnRows(sqlmock.NewRows([]string{"INDEX_NAME", "COLUMN_NAME", "NON_UNIQUE"}).
			AddRow("PRIMARY", "id", 0).
			AddRow("slug_idx", "slug", 0))

	tables, err := schema.NewMySQL(db).Tables(context.Background(), "organisations")
	if err != nil {
		t.Fatalf("Tables: %v", err)
	}

	cols := tables[0].Columns
	if len(cols) != 2 || !cols[0].PrimaryKey || !cols[0].AutoIncrement || !cols[1].UniqueKey {
		t.Errorf("unexpected columns: %+v", cols)
	}
	if idx := tables[0].Indexes; len(idx) != 1 || idx[0].Name != "slug_idx" || !idx[0].Unique {
		t.Errorf("unexpected indexes: %+v", idx)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestOpenDB(t *testing.T) {
	for _, dsn := range []string{"sqlite3://:memory:", "sqlite://:memory:"} {
		db, flavor, err := schema.OpenDB(dsn)
		if err != nil {
			t.Fatalf("OpenDB(%s): %v", dsn, err)
		}
		if flavor != sqlbuilder.SQLite {
			t.Errorf("%s: expected SQLite flavor, got %v", dsn, flavor)
		}
		var one int
		if err := db.QueryRow("SELECT 1").Scan(&one); err != nil || one != 1 {
			t.Errorf("%s: SELECT 1 = %d, %v", dsn, one, err)
		}
		db.Close()
	}

	if _, _, err := schema.OpenDB("no-driver"); err == nil {
		t.Error("expected error for dsn without driver")
	}
	if _, _, err := schema.OpenDB("oracle://x"); err == nil {
		t.Error("expected error for unsupported driver")
	}
}
