package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/theirongolddev/calciq/internal/budget"
	"github.com/theirongolddev/calciq/internal/model"
)

const planColumns = `id, name, created_at, income, members, lifestyle, city, formula,
	rent, grocery, utility, transport, shopping, dining, entertainment, reasoning`

// SavePlan stores a copy of p under name and returns the new record.
func (s *Store) SavePlan(ctx context.Context, name string, p *budget.Plan) (model.SavedPlan, error) {
	if p == nil {
		return model.SavedPlan{}, errors.New("save plan: nil plan")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = "untitled"
	}

	cp := *p
	sp := model.SavedPlan{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: s.now().UTC(),
		Plan:      &cp,
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO plans (`+planColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sp.ID.String(), sp.Name, formatTime(sp.CreatedAt),
		cp.Income, cp.Members, string(cp.Lifestyle), cp.City, string(cp.Formula),
		cp.Rent, cp.Grocery, cp.Utility, cp.Transport,
		cp.Shopping, cp.Dining, cp.Entertainment, cp.Reasoning,
	)
	if err != nil {
		return model.SavedPlan{}, fmt.Errorf("save plan %q: %w", name, err)
	}
	return sp, nil
}

// ListPlans returns every saved plan, newest first.
func (s *Store) ListPlans(ctx context.Context) ([]model.SavedPlan, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+planColumns+` FROM plans ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var plans []model.SavedPlan
	for rows.Next() {
		sp, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("list plans: %w", err)
		}
		plans = append(plans, sp)
	}
	return plans, rows.Err()
}

// GetPlan looks a plan up by its full ID or a unique ID prefix.
func (s *Store) GetPlan(ctx context.Context, id string) (model.SavedPlan, error) {
	full, err := s.resolveID(ctx, id)
	if err != nil {
		return model.SavedPlan{}, err
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+planColumns+` FROM plans WHERE id = ?`, full)
	sp, err := scanPlan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SavedPlan{}, fmt.Errorf("get plan %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.SavedPlan{}, fmt.Errorf("get plan %q: %w", id, err)
	}
	return sp, nil
}

// DeletePlan removes a plan by full ID or unique prefix.
func (s *Store) DeletePlan(ctx context.Context, id string) error {
	full, err := s.resolveID(ctx, id)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM plans WHERE id = ?`, full)
	if err != nil {
		return fmt.Errorf("delete plan %q: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete plan %q: %w", id, ErrNotFound)
	}
	return nil
}

// PlanCount returns the number of saved plans.
func (s *Store) PlanCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM plans`).Scan(&n)
	return n, err
}

func (s *Store) resolveID(ctx context.Context, id string) (string, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return "", fmt.Errorf("plan %q: %w", id, ErrNotFound)
	}
	if u, err := uuid.Parse(id); err == nil {
		return u.String(), nil
	}

	// LIKE wildcards are not valid in an id prefix
	if strings.ContainsAny(id, `%_\`) {
		return "", fmt.Errorf("plan %q: %w", id, ErrNotFound)
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM plans WHERE id LIKE ? LIMIT 2`, id+"%")
	if err != nil {
		return "", fmt.Errorf("resolve plan %q: %w", id, err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var full string
		if err := rows.Scan(&full); err != nil {
			return "", fmt.Errorf("resolve plan %q: %w", id, err)
		}
		ids = append(ids, full)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("resolve plan %q: %w", id, err)
	}

	switch len(ids) {
	case 0:
		return "", fmt.Errorf("plan %q: %w", id, ErrNotFound)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("plan %q: %w", id, ErrAmbiguous)
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlan(r rowScanner) (model.SavedPlan, error) {
	var (
		sp                 model.SavedPlan
		p                  budget.Plan
		id, createdAt      string
		lifestyle, formula string
		city, reasoning    sql.NullString
	)
	err := r.Scan(&id, &sp.Name, &createdAt, &p.Income, &p.Members, &lifestyle, &city, &formula,
		&p.Rent, &p.Grocery, &p.Utility, &p.Transport,
		&p.Shopping, &p.Dining, &p.Entertainment, &reasoning)
	if err != nil {
		return model.SavedPlan{}, err
	}

	sp.ID, err = uuid.Parse(id)
	if err != nil {
		return model.SavedPlan{}, fmt.Errorf("parse id %q: %w", id, err)
	}
	sp.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return model.SavedPlan{}, err
	}
	p.Lifestyle, _ = budget.ParseLifestyle(lifestyle)
	p.Formula, _ = budget.ParseFormula(formula)
	p.City = city.String
	p.Reasoning = reasoning.String

	// stored categories may carry manual edits; totals follow from them
	p.Recompute()
	sp.Plan = &p
	return sp, nil
}
