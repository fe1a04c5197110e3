package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pratik-71/planme-backend/internal/planner"
	"github.com/pratik-71/planme-backend/pkg/logger"
	"github.com/pratik-71/planme-backend/pkg/postgres"
)

type repository struct {
	client *postgres.Postgres
	logger *logger.Logger
}

func NewRepository(client *postgres.Postgres, logger *logger.Logger) planner.Repository {
	return &repository{
		client: client,
		logger: logger,
	}
}

func (r *repository) CheckUser(ctx context.Context, userID, email, name string) (*planner.User, bool, error) {
	r.logger.Debug("postgres.CheckUser")

	var u planner.User
	err := r.client.Pool.QueryRow(ctx, `
		SELECT
			id, user_id, name, email, streak, protein_goal
		FROM
			planme.users
		WHERE
			user_id = $1
	`, userID).Scan(&u.ID, &u.UserID, &u.Name, &u.Email, &u.Streak, &u.ProteinGoal)
	if err == nil {
		return &u, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		err = r.client.ToPgErr(err)
		r.logger.Error("postgres.CheckUser", logger.Err(err))
		return nil, false, err
	}

	// Unknown user. Creation only happens when a display name was supplied;
	// a bare existence check must not auto-create accounts.
	if name == "" {
		return nil, true, nil
	}

	err = r.client.Pool.QueryRow(ctx, `
		INSERT INTO planme.users
			(user_id, name, email)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, name, email, streak, protein_goal
	`, userID, name, email).Scan(&u.ID, &u.UserID, &u.Name, &u.Email, &u.Streak, &u.ProteinGoal)
	if err != nil {
		err = r.client.ToPgErr(err)
		r.logger.Error("postgres.CheckUser", logger.Err(err))
		return nil, false, err
	}
	return &u, true, nil
}

func (r *repository) UpdateProteinGoal(ctx context.Context, userID string, goal int) (*planner.User, error) {
	r.logger.Debug("postgres.UpdateProteinGoal")

	var u planner.User
	err := r.client.Pool.QueryRow(ctx, `
		UPDATE planme.users
		SET protein_goal = $2
		WHERE user_id = $1
		RETURNING id, user_id, name, email, streak, protein_goal
	`, userID, goal).Scan(&u.ID, &u.UserID, &u.Name, &u.Email, &u.Streak, &u.ProteinGoal)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, planner.ErrNotFound
		}
		err = r.client.ToPgErr(err)
		r.logger.Error("postgres.UpdateProteinGoal", logger.Err(err))
		return nil, err
	}
	return &u, nil
}

func (r *repository) AddDailyPlan(ctx context.Context, userID, planName, planDate string, slots []planner.TimeSlot) (*planner.DaySchedule, error) {
	r.logger.Debug("postgres.AddDailyPlan")

	reminders, err := json.Marshal(slots)
	if err != nil {
		return nil, fmt.Errorf("db - AddDailyPlan - json.Marshal: %w", err)
	}

	var row planRow
	err = r.client.Pool.QueryRow(ctx, `
		INSERT INTO planme.user_daily_plans
			(user_id, plan_name, plan_date, reminders)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, plan_name, plan_date, reminders
	`, userID, planName, planDate, reminders).Scan(
		&row.ID, &row.UserID, &row.PlanName, &row.PlanDate, &row.Reminders,
	)
	if err != nil {
		err = r.client.ToPgErr(err)
		r.logger.Error("postgres.AddDailyPlan", logger.Err(err))
		return nil, err
	}

	plan, err := row.ToDomain()
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *repository) UpdateDailyPlan(ctx context.Context, planID int64, slots []planner.TimeSlot) (*planner.DaySchedule, error) {
	r.logger.Debug("postgres.UpdateDailyPlan")

	reminders, err := json.Marshal(slots)
	if err != nil {
		return nil, fmt.Errorf("db - UpdateDailyPlan - json.Marshal: %w", err)
	}

	var row planRow
	err = r.client.Pool.QueryRow(ctx, `
		UPDATE planme.user_daily_plans
		SET reminders = $2, updated_at = now()
		WHERE id = $1
		RETURNING id, user_id, plan_name, plan_date, reminders
	`, planID, reminders).Scan(
		&row.ID, &row.UserID, &row.PlanName, &row.PlanDate, &row.Reminders,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, planner.ErrNotFound
		}
		err = r.client.ToPgErr(err)
		r.logger.Error("postgres.UpdateDailyPlan", logger.Err(err))
		return nil, err
	}

	plan, err := row.ToDomain()
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *repository) GetAllPlansForDate(ctx context.Context, userID, dateISO string) ([]planner.DaySchedule, error) {
	r.logger.Debug("postgres.GetAllPlansForDate")

	rows, err := r.client.Pool.Query(ctx, `
		SELECT
			id, user_id, plan_name, plan_date, reminders
		FROM
			planme.user_daily_plans
		WHERE
			user_id = $1 AND plan_date = $2
		ORDER BY
			id
	`, userID, dateISO)
	if err != nil {
		err = r.client.ToPgErr(err)
		r.logger.Error("postgres.GetAllPlansForDate", logger.Err(err))
		return nil, err
	}
	defer rows.Close()

	return r.collectPlans(rows)
}

func (r *repository) GetUserDailyPlans(ctx context.Context, userID string) ([]planner.DaySchedule, error) {
	r.logger.Debug("postgres.GetUserDailyPlans")

	rows, err := r.client.Pool.Query(ctx, `
		SELECT
			id, user_id, plan_name, plan_date, reminders
		FROM
			planme.user_daily_plans
		WHERE
			user_id = $1
		ORDER BY
			plan_date DESC, id
	`, userID)
	if err != nil {
		err = r.client.ToPgErr(err)
		r.logger.Error("postgres.GetUserDailyPlans", logger.Err(err))
		return nil, err
	}
	defer rows.Close()

	return r.collectPlans(rows)
}

func (r *repository) collectPlans(rows pgx.Rows) ([]planner.DaySchedule, error) {
	var plans []planner.DaySchedule
	for rows.Next() {
		var row planRow
		if err := rows.Scan(&row.ID, &row.UserID, &row.PlanName, &row.PlanDate, &row.Reminders); err != nil {
			err = r.client.ToPgErr(err)
			r.logger.Error("postgres.collectPlans", logger.Err(err))
			return nil, err
		}
		plan, err := row.ToDomain()
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, rows.Err()
}

func (r *repository) CreateTemplate(ctx context.Context, userID, name string, reminders []planner.TemplateReminder) (*planner.Template, error) {
	r.logger.Debug("postgres.CreateTemplate")

	data, err := json.Marshal(reminders)
	if err != nil {
		return nil, fmt.Errorf("db - CreateTemplate - json.Marshal: %w", err)
	}

	var row templateRow
	err = r.client.Pool.QueryRow(ctx, `
		INSERT INTO planme.templates
			(user_id, name, reminders)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, name, reminders, created_at, updated_at
	`, userID, name, data).Scan(
		&row.ID, &row.UserID, &row.Name, &row.Reminders, &row.CreatedAt, &row.UpdatedAt,
	)
	if err != nil {
		err = r.client.ToPgErr(err)
		r.logger.Error("postgres.CreateTemplate", logger.Err(err))
		return nil, err
	}

	tpl, err := row.ToDomain()
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (r *repository) GetUserTemplates(ctx context.Context, userID string) ([]planner.Template, error) {
	r.logger.Debug("postgres.GetUserTemplates")

	rows, err := r.client.Pool.Query(ctx, `
		SELECT
			id, user_id, name, reminders, created_at, updated_at
		FROM
			planme.templates
		WHERE
			user_id = $1
		ORDER BY
			updated_at DESC
	`, userID)
	if err != nil {
		err = r.client.ToPgErr(err)
		r.logger.Error("postgres.GetUserTemplates", logger.Err(err))
		return nil, err
	}
	defer rows.Close()

	var templates []planner.Template
	for rows.Next() {
		var row templateRow
		if err := rows.Scan(&row.ID, &row.UserID, &row.Name, &row.Reminders, &row.CreatedAt, &row.UpdatedAt); err != nil {
			err = r.client.ToPgErr(err)
			r.logger.Error("postgres.GetUserTemplates", logger.Err(err))
			return nil, err
		}
		tpl, err := row.ToDomain()
		if err != nil {
			return nil, err
		}
		templates = append(templates, tpl)
	}
	return templates, rows.Err()
}

func (r *repository) UpdateTemplate(ctx context.Context, templateID int64, name string, reminders []planner.TemplateReminder) (*planner.Template, error) {
	r.logger.Debug("postgres.UpdateTemplate")

	data, err := json.Marshal(reminders)
	if err != nil {
		return nil, fmt.Errorf("db - UpdateTemplate - json.Marshal: %w", err)
	}

	var row templateRow
	err = r.client.Pool.QueryRow(ctx, `
		UPDATE planme.templates
		SET name = $2, reminders = $3, updated_at = now()
		WHERE id = $1
		RETURNING id, user_id, name, reminders, created_at, updated_at
	`, templateID, name, data).Scan(
		&row.ID, &row.UserID, &row.Name, &row.Reminders, &row.CreatedAt, &row.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, planner.ErrNotFound
		}
		err = r.client.ToPgErr(err)
		r.logger.Error("postgres.UpdateTemplate", logger.Err(err))
		return nil, err
	}

	tpl, err := row.ToDomain()
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (r *repository) DeleteTemplate(ctx context.Context, templateID int64) error {
	r.logger.Debug("postgres.DeleteTemplate")

	tag, err := r.client.Pool.Exec(ctx, `
		DELETE FROM planme.templates WHERE id = $1
	`, templateID)
	if err != nil {
		err = r.client.ToPgErr(err)
		r.logger.Error("postgres.DeleteTemplate", logger.Err(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return planner.ErrNotFound
	}
	return nil
}

func (r *repository) GetBucketList(ctx context.Context, userID string) ([]planner.BucketItem, error) {
	r.logger.Debug("postgres.GetBucketList")

	var data []byte
	err := r.client.Pool.QueryRow(ctx, `
		SELECT items FROM planme.bucket_list WHERE user_id = $1
	`, userID).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return []planner.BucketItem{}, nil
	}
	if err != nil {
		err = r.client.ToPgErr(err)
		r.logger.Error("postgres.GetBucketList", logger.Err(err))
		return nil, err
	}

	var items []planner.BucketItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("db - GetBucketList - json.Unmarshal: %w", err)
	}
	return items, nil
}

// AddBucketItem appends under a row lock so concurrent adds for the same
// user cannot lose each other's items.
func (r *repository) AddBucketItem(ctx context.Context, userID, title, description string) ([]planner.BucketItem, error) {
	r.logger.Debug("postgres.AddBucketItem")

	tx, err := r.client.NewTx(ctx)
	if err != nil {
		err = r.client.ToPgErr(err)
		r.logger.Error("postgres.AddBucketItem", logger.Err(err))
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var data []byte
	err = tx.QueryRow(ctx, `
		SELECT items FROM planme.bucket_list WHERE user_id = $1 FOR UPDATE
	`, userID).Scan(&data)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		err = r.client.ToPgErr(err)
		r.logger.Error("postgres.AddBucketItem", logger.Err(err))
		return nil, err
	}

	var items []planner.BucketItem
	if len(data) > 0 {
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("db - AddBucketItem - json.Unmarshal: %w", err)
		}
	}
	items = append(items, planner.BucketItem{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Position:    len(items),
	})

	payload, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("db - AddBucketItem - json.Marshal: %w", err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO planme.bucket_list (user_id, items)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET items = EXCLUDED.items, updated_at = now()
	`, userID, payload)
	if err != nil {
		err = r.client.ToPgErr(err)
		r.logger.Error("postgres.AddBucketItem", logger.Err(err))
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		err = r.client.ToPgErr(err)
		r.logger.Error("postgres.AddBucketItem", logger.Err(err))
		return nil, err
	}
	return items, nil
}

func (r *repository) UpdateBucketList(ctx context.Context, userID string, items []planner.BucketItem) ([]planner.BucketItem, error) {
	r.logger.Debug("postgres.UpdateBucketList")

	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("db - UpdateBucketList - json.Marshal: %w", err)
	}

	_, err = r.client.Pool.Exec(ctx, `
		INSERT INTO planme.bucket_list (user_id, items)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET items = EXCLUDED.items, updated_at = now()
	`, userID, data)
	if err != nil {
		err = r.client.ToPgErr(err)
		r.logger.Error("postgres.UpdateBucketList", logger.Err(err))
		return nil, err
	}
	return items, nil
}

func (r *repository) ReorderBucketList(ctx context.Context, userID string, ordered []planner.BucketItem) ([]planner.BucketItem, error) {
	r.logger.Debug("postgres.ReorderBucketList")

	for i := range ordered {
		ordered[i].Position = i
	}
	return r.UpdateBucketList(ctx, userID, ordered)
}

func (r *repository) GetTodayMisc(ctx context.Context, userID, dateISO string) (*planner.DailyMisc, error) {
	r.logger.Debug("postgres.GetTodayMisc")

	var row miscRow
	err := r.client.Pool.QueryRow(ctx, `
		SELECT date, protein, water, updated_at
		FROM planme.daily_misc
		WHERE user_id = $1 AND date = $2
	`, userID, dateISO).Scan(&row.Date, &row.Protein, &row.Water, &row.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return &planner.DailyMisc{DateISO: dateISO}, nil
	}
	if err != nil {
		err = r.client.ToPgErr(err)
		r.logger.Error("postgres.GetTodayMisc", logger.Err(err))
		return nil, err
	}

	misc := row.ToDomain()
	return &misc, nil
}

func (r *repository) AddProtein(ctx context.Context, userID, dateISO string, grams int) (*planner.DailyMisc, error) {
	r.logger.Debug("postgres.AddProtein")

	var row miscRow
	err := r.client.Pool.QueryRow(ctx, `
		INSERT INTO planme.daily_misc (user_id, date, protein)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, date) DO UPDATE
		SET protein = planme.daily_misc.protein + EXCLUDED.protein, updated_at = now()
		RETURNING date, protein, water, updated_at
	`, userID, dateISO, grams).Scan(&row.Date, &row.Protein, &row.Water, &row.UpdatedAt)
	if err != nil {
		err = r.client.ToPgErr(err)
		r.logger.Error("postgres.AddProtein", logger.Err(err))
		return nil, err
	}

	misc := row.ToDomain()
	return &misc, nil
}

func (r *repository) ProteinHistory(ctx context.Context, userID string, days, offsetDays int) ([]planner.DailyMisc, error) {
	r.logger.Debug("postgres.ProteinHistory")

	rows, err := r.client.Pool.Query(ctx, `
		SELECT date, protein, water, updated_at
		FROM planme.daily_misc
		WHERE user_id = $1
		  AND date <= current_date - $3::int
		  AND date > current_date - $3::int - $2::int
		ORDER BY date DESC
	`, userID, days, offsetDays)
	if err != nil {
		err = r.client.ToPgErr(err)
		r.logger.Error("postgres.ProteinHistory", logger.Err(err))
		return nil, err
	}
	defer rows.Close()

	var history []planner.DailyMisc
	for rows.Next() {
		var row miscRow
		if err := rows.Scan(&row.Date, &row.Protein, &row.Water, &row.UpdatedAt); err != nil {
			err = r.client.ToPgErr(err)
			r.logger.Error("postgres.ProteinHistory", logger.Err(err))
			return nil, err
		}
		history = append(history, row.ToDomain())
	}
	return history, rows.Err()
}

func (r *repository) ListUserIDs(ctx context.Context) ([]string, error) {
	r.logger.Debug("postgres.ListUserIDs")

	rows, err := r.client.Pool.Query(ctx, `
		SELECT user_id FROM planme.users ORDER BY id
	`)
	if err != nil {
		err = r.client.ToPgErr(err)
		r.logger.Error("postgres.ListUserIDs", logger.Err(err))
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			err = r.client.ToPgErr(err)
			r.logger.Error("postgres.ListUserIDs", logger.Err(err))
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
