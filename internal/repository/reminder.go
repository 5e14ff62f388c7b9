// Package repository is the reminder persistence collaborator. The notifier
// core only reads from it; the create/update/delete surface exists for the
// app's forms and fires the change signal the scheduler subscribes to.
package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/centavo-app/notifier/internal/database"
	"github.com/centavo-app/notifier/internal/models"
)

const reminderColumns = `id, user_id, COALESCE(name, ''), COALESCE(frequency, 'daily'),
	COALESCE(interval_days, 0), COALESCE(time_at, ''), end_date, COALESCE(comment, ''), active, created_at`

type ReminderRepository struct {
	db       *database.DB
	onChange []func()
}

func NewReminderRepository(db *database.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

// OnChange registers a callback invoked after every successful mutation,
// so the scheduler can refresh immediately instead of waiting for its
// refresh ticker. Register before the scheduler starts.
func (r *ReminderRepository) OnChange(fn func()) {
	r.onChange = append(r.onChange, fn)
}

func (r *ReminderRepository) changed() {
	for _, fn := range r.onChange {
		fn()
	}
}

func (r *ReminderRepository) Create(ctx context.Context, reminder *models.Reminder) error {
	if reminder.ID == "" {
		reminder.ID = uuid.NewString()
	}
	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO reminders (id, user_id, name, frequency, interval_days, time_at, end_date, comment, active)
		 VALUES ($1, $2, $3, $4, NULLIF($5, 0), NULLIF($6, ''), $7, $8, $9)
		 RETURNING created_at`,
		reminder.ID, reminder.UserID, reminder.Name, reminder.Frequency,
		reminder.IntervalDays, reminder.TimeAt, reminder.EndDate, reminder.Comment, reminder.Active,
	).Scan(&reminder.CreatedAt)
	if err != nil {
		return err
	}
	r.changed()
	return nil
}

func (r *ReminderRepository) GetByID(ctx context.Context, id, userID string) (*models.Reminder, error) {
	reminder := &models.Reminder{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT `+reminderColumns+` FROM reminders WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&reminder.ID, &reminder.UserID, &reminder.Name, &reminder.Frequency,
		&reminder.IntervalDays, &reminder.TimeAt, &reminder.EndDate, &reminder.Comment,
		&reminder.Active, &reminder.CreatedAt)
	if err != nil {
		return nil, err
	}
	return reminder, nil
}

// ListActiveReminders returns every active reminder. The cache filters by
// the signed-in user in-process, so no user id is taken here.
func (r *ReminderRepository) ListActiveReminders(ctx context.Context) ([]*models.Reminder, error) {
	return r.list(ctx, `SELECT `+reminderColumns+` FROM reminders WHERE active = true ORDER BY created_at ASC`)
}

// ListReminders returns every reminder, including inactive ones.
func (r *ReminderRepository) ListReminders(ctx context.Context) ([]*models.Reminder, error) {
	return r.list(ctx, `SELECT `+reminderColumns+` FROM reminders ORDER BY created_at ASC`)
}

// ListByUser returns one user's reminders for display surfaces.
func (r *ReminderRepository) ListByUser(ctx context.Context, userID string) ([]*models.Reminder, error) {
	return r.list(ctx,
		`SELECT `+reminderColumns+` FROM reminders WHERE user_id = $1 ORDER BY created_at ASC`,
		userID)
}

func (r *ReminderRepository) list(ctx context.Context, query string, args ...any) ([]*models.Reminder, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reminders []*models.Reminder
	for rows.Next() {
		reminder := &models.Reminder{}
		if err := rows.Scan(&reminder.ID, &reminder.UserID, &reminder.Name, &reminder.Frequency,
			&reminder.IntervalDays, &reminder.TimeAt, &reminder.EndDate, &reminder.Comment,
			&reminder.Active, &reminder.CreatedAt); err != nil {
			return nil, err
		}
		reminders = append(reminders, reminder)
	}
	return reminders, rows.Err()
}

func (r *ReminderRepository) Update(ctx context.Context, reminder *models.Reminder) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE reminders SET name = $1, frequency = $2, interval_days = NULLIF($3, 0),
		 time_at = NULLIF($4, ''), end_date = $5, comment = $6, active = $7
		 WHERE id = $8 AND user_id = $9`,
		reminder.Name, reminder.Frequency, reminder.IntervalDays, reminder.TimeAt,
		reminder.EndDate, reminder.Comment, reminder.Active, reminder.ID, reminder.UserID,
	)
	if err != nil {
		return err
	}
	r.changed()
	return nil
}

func (r *ReminderRepository) SetActive(ctx context.Context, id, userID string, active bool) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE reminders SET active = $1 WHERE id = $2 AND user_id = $3`,
		active, id, userID,
	)
	if err != nil {
		return err
	}
	r.changed()
	return nil
}

func (r *ReminderRepository) Delete(ctx context.Context, id, userID string) error {
	_, err := r.db.Pool.Exec(ctx,
		`DELETE FROM reminders WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return err
	}
	r.changed()
	return nil
}
