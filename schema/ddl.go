package schema

import (
	"strconv"

	"github.com/huandu/go-sqlbuilder"
)

// CreateTable builds a CREATE TABLE IF NOT EXISTS statement for a resource.
func CreateTable(flavor sqlbuilder.Flavor, table, key string, strategy KeyStrategy, s *Schema) (string, []interface{}) {
	ctb := sqlbuilder.NewCreateTableBuilder()
	ctb.CreateTable(table).IfNotExists()
	ctb.Define(append([]string{key}, keyColumn(flavor, strategy)...)...)

	for _, f := range s.fields {
		def := []string{f.Name, columnType(flavor, f)}
		if !f.Optional && !f.Nullable {
			def = append(def, "NOT NULL")
		}
		ctb.Define(def...)
	}

	return ctb.BuildWithFlavor(flavor)
}

func keyColumn(flavor sqlbuilder.Flavor, strategy KeyStrategy) []string {
	if strategy == KeyUUID {
		if flavor == sqlbuilder.SQLite {
			return []string{"TEXT", "PRIMARY KEY"}
		}
		return []string{"VARCHAR(36)", "PRIMARY KEY"}
	}

	switch flavor {
	case sqlbuilder.PostgreSQL:
		return []string{"BIGSERIAL", "PRIMARY KEY"}
	case sqlbuilder.SQLite:
		return []string{"INTEGER", "PRIMARY KEY", "AUTOINCREMENT"}
	default:
		return []string{"BIGINT", "AUTO_INCREMENT", "PRIMARY KEY"}
	}
}

func columnType(flavor sqlbuilder.Flavor, f Field) string {
	switch f.Type {
	case Int:
		if flavor == sqlbuilder.SQLite {
			return "INTEGER"
		}
		return "BIGINT"
	case Float:
		switch flavor {
		case sqlbuilder.PostgreSQL:
			return "DOUBLE PRECISION"
		case sqlbuilder.SQLite:
			return "REAL"
		}
		return "DOUBLE"
	case Bool:
		return "BOOLEAN"
	default:
		if f.MaxLength > 0 {
			return "VARCHAR(" + strconv.Itoa(f.MaxLength) + ")"
		}
		return "TEXT"
	}
}
