package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/viant/kanon"
	"github.com/viant/kanon/engine"
)

// ErrPlanNotFound is returned when no plan is saved under a name.
var ErrPlanNotFound = errors.New("store: plan not found")

// PlanInfo describes a saved plan.
type PlanInfo struct {
	Name       string
	ID         string
	KTarget    int
	Classes    int
	Groups     int
	Unresolved int
	Created    time.Time
}

// SavePlan stores plan under name, replacing any previous plan of that name.
func SavePlan(ctx context.Context, db *sql.DB, name string, plan *kanon.Plan) error {
	if name == "" {
		return fmt.Errorf("store: SavePlan called with empty name")
	}
	if err := EnsureSchema(ctx, db); err != nil {
		return err
	}
	data, err := plan.MarshalBinary()
	if err != nil {
		return fmt.Errorf("store: save plan %s: %w", name, err)
	}
	stats := plan.Stats()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: save plan %s: %w", name, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `INSERT INTO `+PlanTable+`(name, plan_id, k_target, classes, groups_cnt, unresolved, created_at, data)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(name) DO UPDATE SET plan_id = excluded.plan_id, k_target = excluded.k_target, classes = excluded.classes,
    groups_cnt = excluded.groups_cnt, unresolved = excluded.unresolved, created_at = excluded.created_at, data = excluded.data`,
		name, plan.ID(), plan.Config().KTarget, stats.Classes, stats.Groups, stats.Unresolved, plan.Created().UTC().Format(time.RFC3339Nano), data); err != nil {
		return fmt.Errorf("store: save plan %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM `+ClassTable+` WHERE plan_name = ?`, name); err != nil {
		return fmt.Errorf("store: save plan %s: %w", name, err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO `+ClassTable+`(plan_name, class_idx, k_count, group_id, vector) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("store: save plan %s: %w", name, err)
	}
	defer stmt.Close()
	classes := plan.Classes()
	for i := 0; i < classes.Len(); i++ {
		if _, err := stmt.ExecContext(ctx, name, i, classes.Class(i).KCount, plan.GroupOf(i), engine.EncodeVector(plan.Vector(i))); err != nil {
			return fmt.Errorf("store: save plan %s class %d: %w", name, i, err)
		}
	}
	return tx.Commit()
}

// LoadPlan reads the plan saved under name.
func LoadPlan(ctx context.Context, db *sql.DB, name string) (*kanon.Plan, error) {
	if err := EnsureSchema(ctx, db); err != nil {
		return nil, err
	}
	var data []byte
	err := db.QueryRowContext(ctx, `SELECT data FROM `+PlanTable+` WHERE name = ?`, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrPlanNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("store: load plan %s: %w", name, err)
	}
	plan, err := kanon.UnmarshalPlan(data)
	if err != nil {
		return nil, fmt.Errorf("store: load plan %s: %w", name, err)
	}
	return plan, nil
}

// ListPlans returns the saved plans ordered by name.
func ListPlans(ctx context.Context, db *sql.DB) ([]PlanInfo, error) {
	if err := EnsureSchema(ctx, db); err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT name, plan_id, k_target, classes, groups_cnt, unresolved, created_at FROM `+PlanTable+` ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("store: list plans: %w", err)
	}
	defer rows.Close()
	var out []PlanInfo
	for rows.Next() {
		var info PlanInfo
		var created string
		if err := rows.Scan(&info.Name, &info.ID, &info.KTarget, &info.Classes, &info.Groups, &info.Unresolved, &created); err != nil {
			return nil, fmt.Errorf("store: list plans: %w", err)
		}
		if info.Created, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("store: list plans: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// DeletePlan removes a saved plan and its classes.
func DeletePlan(ctx context.Context, db *sql.DB, name string) error {
	if err := EnsureSchema(ctx, db); err != nil {
		return err
	}
	for _, table := range []string{ClassTable, PlanTable} {
		column := "plan_name"
		if table == PlanTable {
			column = "name"
		}
		if _, err := db.ExecContext(ctx, `DELETE FROM `+table+` WHERE `+column+` = ?`, name); err != nil {
			return fmt.Errorf("store: delete plan %s: %w", name, err)
		}
	}
	return nil
}

// NearestClasses ranks the classes of a saved plan by L1 distance to vector
// using the kanon_l1 SQL function; ties are ordered by class index.
func NearestClasses(ctx context.Context, db *sql.DB, name string, vector []float32, n int) ([]int, error) {
	rows, err := db.QueryContext(ctx, `SELECT class_idx FROM `+ClassTable+`
WHERE plan_name = ? ORDER BY kanon_l1(vector, ?), class_idx LIMIT ?`, name, engine.EncodeVector(vector), n)
	if err != nil {
		return nil, fmt.Errorf("store: nearest classes: %w", err)
	}
	defer rows.Close()
	var out []int
	for rows.Next() {
		var class int
		if err := rows.Scan(&class); err != nil {
			return nil, fmt.Errorf("store: nearest classes: %w", err)
		}
		out = append(out, class)
	}
	return out, rows.Err()
}
