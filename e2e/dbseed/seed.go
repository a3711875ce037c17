package dbseed

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/huandu/go-sqlbuilder"
	"github.com/xcono/bread/schema"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
)

// Seed opens dsn and recreates the tables of every resource, empty.
func Seed(t *testing.T, dsn string, decls []schema.Resource) (*sql.DB, sqlbuilder.Flavor) {
	t.Helper()

	db, flavor, err := schema.OpenDB(dsn)
	if err != nil {
		t.Fatalf("Failed to open %s: %v", dsn, err)
	}
	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	for _, decl := range decls {
		if err := Recreate(db, flavor, decl); err != nil {
			t.Fatalf("Failed to create table for %s: %v", decl.Name, err)
		}
	}

	return db, flavor
}

// Recreate drops the table of decl and creates it from its fields.
func Recreate(db *sql.DB, flavor sqlbuilder.Flavor, decl schema.Resource) error {
	s, err := schema.New(decl.Fields...)
	if err != nil {
		return err
	}

	table := decl.ResourceTable()
	if _, err := db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", flavor.Quote(table))); err != nil {
		return err
	}

	ddl, args := schema.CreateTable(flavor, table, decl.PrimaryKey, decl.KeyStrategy, s)
	_, err = db.Exec(ddl, args...)
	return err
}
