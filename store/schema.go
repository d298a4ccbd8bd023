package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

const (
	// PlanTable stores encoded plans by name.
	PlanTable = "kanon_plan"
	// ClassTable stores the classes of every saved plan.
	ClassTable = "kanon_plan_class"
)

// PlanTableDDL returns the DDL of the plan table.
func PlanTableDDL() string {
	return `CREATE TABLE IF NOT EXISTS ` + PlanTable + ` (
    name       TEXT PRIMARY KEY,
    plan_id    TEXT NOT NULL,
    k_target   INTEGER NOT NULL,
    classes    INTEGER NOT NULL,
    groups_cnt INTEGER NOT NULL,
    unresolved INTEGER NOT NULL,
    created_at TIMESTAMP NOT NULL,
    data       BLOB NOT NULL
);`
}

// ClassTableDDL returns the DDL of the plan class table.
func ClassTableDDL() string {
	return `CREATE TABLE IF NOT EXISTS ` + ClassTable + ` (
    plan_name TEXT NOT NULL,
    class_idx INTEGER NOT NULL,
    k_count   INTEGER NOT NULL,
    group_id  INTEGER NOT NULL,
    vector    BLOB,
    PRIMARY KEY(plan_name, class_idx)
);`
}

// EnsureSchema creates the plan tables if they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, ddl := range []string{PlanTableDDL(), ClassTableDDL()} {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("store: ensure schema: %w", err)
		}
	}
	return nil
}

// quote returns name as a quoted SQL identifier.
func quote(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("store: empty identifier")
	}
	if strings.ContainsRune(name, 0) {
		return "", fmt.Errorf("store: invalid identifier %q", name)
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`, nil
}
