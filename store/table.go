package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/viant/kanon/dataset"
)

// LoadTable reads every row of table into a dataset, in rowid order. When
// idColumn is set its text becomes the row id; the column stays part of the
// dataset.
func LoadTable(ctx context.Context, db *sql.DB, table, idColumn string) (*dataset.Dataset, error) {
	name, err := quote(table)
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT * FROM `+name+` ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("store: load %s: %w", table, err)
	}
	defer rows.Close()
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("store: load %s: %w", table, err)
	}
	ds, err := dataset.New(columns...)
	if err != nil {
		return nil, fmt.Errorf("store: load %s: %w", table, err)
	}
	idPos := -1
	if idColumn != "" {
		p, ok := ds.ColumnIndex(idColumn)
		if !ok {
			return nil, fmt.Errorf("store: load %s: unknown id column %q", table, idColumn)
		}
		idPos = p
	}
	raw := make([]interface{}, len(columns))
	dest := make([]interface{}, len(columns))
	for i := range raw {
		dest[i] = &raw[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("store: load %s: %w", table, err)
		}
		values := make([]dataset.Value, len(raw))
		for i, v := range raw {
			values[i] = toValue(v)
		}
		id := ""
		if idPos >= 0 {
			id = values[idPos].Text()
		}
		if err := ds.Append(id, values...); err != nil {
			return nil, fmt.Errorf("store: load %s: %w", table, err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: load %s: %w", table, err)
	}
	return ds, nil
}

// WriteTable replaces table with the content of ds.
func WriteTable(ctx context.Context, db *sql.DB, table string, ds *dataset.Dataset) error {
	name, err := quote(table)
	if err != nil {
		return err
	}
	columns := ds.Columns()
	quoted := make([]string, len(columns))
	for i, c := range columns {
		if quoted[i], err = quote(c); err != nil {
			return err
		}
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: write %s: %w", table, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS `+name); err != nil {
		return fmt.Errorf("store: write %s: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx, `CREATE TABLE `+name+` (`+strings.Join(quoted, ", ")+`)`); err != nil {
		return fmt.Errorf("store: write %s: %w", table, err)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO `+name+` (`+strings.Join(quoted, ", ")+`) VALUES (`+placeholders+`)`)
	if err != nil {
		return fmt.Errorf("store: write %s: %w", table, err)
	}
	defer stmt.Close()

	args := make([]interface{}, len(columns))
	for row := 0; row < ds.Len(); row++ {
		for col := range columns {
			args[col] = fromValue(ds.Value(row, col))
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("store: write %s row %d: %w", table, row, err)
		}
	}
	return tx.Commit()
}

func toValue(v interface{}) dataset.Value {
	switch actual := v.(type) {
	case nil:
		return dataset.Null()
	case int64:
		return dataset.Number(float64(actual))
	case float64:
		return dataset.Number(actual)
	case bool:
		if actual {
			return dataset.Number(1)
		}
		return dataset.Number(0)
	case []byte:
		return dataset.String(string(actual))
	case string:
		return dataset.String(actual)
	case time.Time:
		return dataset.String(actual.Format(time.RFC3339Nano))
	}
	return dataset.String(fmt.Sprint(v))
}

func fromValue(v dataset.Value) interface{} {
	switch v.Kind() {
	case dataset.KindNumber:
		f, _ := v.Float()
		if math.Abs(f) < 1<<53 && f == math.Trunc(f) {
			return int64(f)
		}
		return f
	case dataset.KindString:
		return v.Text()
	}
	return nil
}
