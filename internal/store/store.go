// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/funnelquiz/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout is fixed width so stored timestamps compare as strings.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for funnel records.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Tracker writes and API reads share one connection to avoid SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS funnel_records (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			page_viewed_at TEXT,
			quiz_started_at TEXT,
			email_screen_reached_at TEXT,
			quiz_completed_at TEXT,
			result_viewed_at TEXT,
			vsl_clicked_at TEXT,
			vsl_click_count INTEGER NOT NULL DEFAULT 0,
			last_question_reached INTEGER NOT NULL DEFAULT 0,
			email TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL DEFAULT '',
			profile TEXT NOT NULL DEFAULT '',
			readiness_score INTEGER NOT NULL DEFAULT 0,
			variant TEXT NOT NULL DEFAULT '',
			utm_source TEXT NOT NULL DEFAULT '',
			utm_medium TEXT NOT NULL DEFAULT '',
			utm_campaign TEXT NOT NULL DEFAULT '',
			utm_content TEXT NOT NULL DEFAULT '',
			utm_term TEXT NOT NULL DEFAULT '',
			referrer TEXT NOT NULL DEFAULT '',
			user_agent TEXT NOT NULL DEFAULT '',
			device_type TEXT NOT NULL DEFAULT '',
			fbclid TEXT NOT NULL DEFAULT '',
			gclid TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS quiz_answers (
			session_id TEXT NOT NULL,
			question_id TEXT NOT NULL,
			value TEXT NOT NULL,
			answered_at TEXT NOT NULL,
			PRIMARY KEY (session_id, question_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_funnel_records_page_viewed_at ON funnel_records(page_viewed_at);`,
		`CREATE INDEX IF NOT EXISTS idx_funnel_records_utm_source ON funnel_records(utm_source);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// milestoneUpdates maps milestones to the column update they apply.
// Each statement takes the timestamp then the session id.
var milestoneUpdates = map[model.Milestone]string{
	model.MilestoneQuizStarted:        `UPDATE funnel_records SET quiz_started_at = COALESCE(quiz_started_at, ?) WHERE id = ?`,
	model.MilestoneEmailScreenReached: `UPDATE funnel_records SET email_screen_reached_at = COALESCE(email_screen_reached_at, ?) WHERE id = ?`,
	model.MilestoneQuizCompleted:      `UPDATE funnel_records SET quiz_completed_at = COALESCE(quiz_completed_at, ?) WHERE id = ?`,
	model.MilestoneResultViewed:       `UPDATE funnel_records SET result_viewed_at = COALESCE(result_viewed_at, ?) WHERE id = ?`,
	model.MilestoneVSLClicked:         `UPDATE funnel_records SET vsl_clicked_at = COALESCE(vsl_clicked_at, ?), vsl_click_count = vsl_click_count + 1 WHERE id = ?`,
}

// RecordMilestone applies a milestone to the session row, creating it if needed.
// The first timestamp of a milestone is kept. Milestones without a column are ignored.
func (s *Store) RecordMilestone(ctx context.Context, sessionID string, milestone model.Milestone, at time.Time, fields model.MilestoneFields) (err error) {
	switch milestone {
	case model.MilestoneAnswerSubmitted, model.MilestonePatternRevealed:
		return nil
	}
	stamp := formatTime(at)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO funnel_records (id, created_at) VALUES (?, ?) ON CONFLICT(id) DO NOTHING`,
		sessionID, stamp); err != nil {
		return fmt.Errorf("failed to create funnel record: %w", err)
	}

	switch milestone {
	case model.MilestonePageViewed:
		var attr model.Attribution
		if fields.Attribution != nil {
			attr = *fields.Attribution
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE funnel_records SET
				variant = CASE WHEN page_viewed_at IS NULL THEN ? ELSE variant END,
				utm_source = CASE WHEN page_viewed_at IS NULL THEN ? ELSE utm_source END,
				utm_medium = CASE WHEN page_viewed_at IS NULL THEN ? ELSE utm_medium END,
				utm_campaign = CASE WHEN page_viewed_at IS NULL THEN ? ELSE utm_campaign END,
				utm_content = CASE WHEN page_viewed_at IS NULL THEN ? ELSE utm_content END,
				utm_term = CASE WHEN page_viewed_at IS NULL THEN ? ELSE utm_term END,
				referrer = CASE WHEN page_viewed_at IS NULL THEN ? ELSE referrer END,
				user_agent = CASE WHEN page_viewed_at IS NULL THEN ? ELSE user_agent END,
				device_type = CASE WHEN page_viewed_at IS NULL THEN ? ELSE device_type END,
				fbclid = CASE WHEN page_viewed_at IS NULL THEN ? ELSE fbclid END,
				gclid = CASE WHEN page_viewed_at IS NULL THEN ? ELSE gclid END,
				page_viewed_at = COALESCE(page_viewed_at, ?)
			WHERE id = ?`,
			attr.Variant, attr.UTMSource, attr.UTMMedium, attr.UTMCampaign, attr.UTMContent, attr.UTMTerm,
			attr.Referrer, attr.UserAgent, attr.DeviceType, attr.FBClickID, attr.GClickID,
			stamp, sessionID)
	case model.MilestoneQuestionShown:
		_, err = tx.ExecContext(ctx,
			`UPDATE funnel_records SET last_question_reached = MAX(last_question_reached, ?) WHERE id = ?`,
			fields.QuestionIndex, sessionID)
	case model.MilestoneLeadCaptured:
		_, err = tx.ExecContext(ctx,
			`UPDATE funnel_records SET email = ?, name = ?, profile = ?, readiness_score = ? WHERE id = ?`,
			fields.Email, fields.Name, fields.Profile, fields.ReadinessScore, sessionID)
		if err == nil {
			for questionID, value := range fields.Answers {
				if err = upsertAnswer(ctx, tx, sessionID, questionID, value, stamp); err != nil {
					break
				}
			}
		}
	default:
		stmt, ok := milestoneUpdates[milestone]
		if !ok {
			err = fmt.Errorf("unknown milestone %q", milestone)
			return err
		}
		_, err = tx.ExecContext(ctx, stmt, stamp, sessionID)
	}
	if err != nil {
		return fmt.Errorf("failed to record %s: %w", milestone, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit milestone: %w", err)
	}
	return nil
}

// RecordAnswer stores an answer. A repeated answer replaces the previous value.
func (s *Store) RecordAnswer(ctx context.Context, sessionID, questionID, value string, at time.Time) error {
	if err := upsertAnswer(ctx, s.db, sessionID, questionID, value, formatTime(at)); err != nil {
		return fmt.Errorf("failed to record answer: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertAnswer(ctx context.Context, db execer, sessionID, questionID, value, stamp string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO quiz_answers (session_id, question_id, value, answered_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(session_id, question_id) DO UPDATE SET value = excluded.value, answered_at = excluded.answered_at`,
		sessionID, questionID, value, stamp)
	return err
}

// InsertRecords writes complete records and their answers in one transaction.
func (s *Store) InsertRecords(ctx context.Context, records []model.FunnelRecord) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO funnel_records (id, created_at, page_viewed_at, quiz_started_at, email_screen_reached_at,
			quiz_completed_at, result_viewed_at, vsl_clicked_at, vsl_click_count, last_question_reached,
			email, name, profile, readiness_score, variant, utm_source, utm_medium, utm_campaign,
			utm_content, utm_term, referrer, user_agent, device_type, fbclid, gclid)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()

	for _, r := range records {
		a := r.Attribution
		if _, err = stmt.ExecContext(ctx,
			r.ID, formatTime(r.CreatedAt),
			nullTime(r.PageViewedAt), nullTime(r.QuizStartedAt), nullTime(r.EmailScreenReachedAt),
			nullTime(r.QuizCompletedAt), nullTime(r.ResultViewedAt), nullTime(r.VSLClickedAt),
			r.VSLClickCount, r.LastQuestionReached,
			r.Email, r.Name, r.Profile, r.ReadinessScore,
			a.Variant, a.UTMSource, a.UTMMedium, a.UTMCampaign, a.UTMContent, a.UTMTerm,
			a.Referrer, a.UserAgent, a.DeviceType, a.FBClickID, a.GClickID,
		); err != nil {
			return fmt.Errorf("failed to insert record %s: %w", r.ID, err)
		}
		for questionID, value := range r.Answers {
			if err = upsertAnswer(ctx, tx, r.ID, questionID, value, formatTime(r.CreatedAt)); err != nil {
				return fmt.Errorf("failed to insert answer: %w", err)
			}
		}
	}

	return tx.Commit()
}

// ListRecords returns records matching the filter, most recent page view first,
// with their answers attached.
func (s *Store) ListRecords(ctx context.Context, filter model.RecordFilter) ([]model.FunnelRecord, error) {
	where, args := filterClause(filter)
	query := fmt.Sprintf(`SELECT id, created_at, page_viewed_at, quiz_started_at, email_screen_reached_at,
			quiz_completed_at, result_viewed_at, vsl_clicked_at, vsl_click_count, last_question_reached,
			email, name, profile, readiness_score, variant, utm_source, utm_medium, utm_campaign,
			utm_content, utm_term, referrer, user_agent, device_type, fbclid, gclid
		FROM funnel_records
		WHERE %s
		ORDER BY COALESCE(page_viewed_at, created_at) DESC, id ASC`, where)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var records []model.FunnelRecord
	index := map[string]int{}
	for rows.Next() {
		var r model.FunnelRecord
		var createdAt string
		var pageViewed, started, emailScreen, completed, resultViewed, vslClicked sql.NullString
		a := &r.Attribution
		if err := rows.Scan(&r.ID, &createdAt, &pageViewed, &started, &emailScreen,
			&completed, &resultViewed, &vslClicked, &r.VSLClickCount, &r.LastQuestionReached,
			&r.Email, &r.Name, &r.Profile, &r.ReadinessScore,
			&a.Variant, &a.UTMSource, &a.UTMMedium, &a.UTMCampaign, &a.UTMContent, &a.UTMTerm,
			&a.Referrer, &a.UserAgent, &a.DeviceType, &a.FBClickID, &a.GClickID); err != nil {
			return nil, err
		}
		if r.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, err
		}
		for _, col := range []struct {
			src sql.NullString
			dst **time.Time
		}{
			{pageViewed, &r.PageViewedAt},
			{started, &r.QuizStartedAt},
			{emailScreen, &r.EmailScreenReachedAt},
			{completed, &r.QuizCompletedAt},
			{resultViewed, &r.ResultViewedAt},
			{vslClicked, &r.VSLClickedAt},
		} {
			if *col.dst, err = parseNullTime(col.src); err != nil {
				return nil, err
			}
		}
		index[r.ID] = len(records)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return records, nil
	}

	answerQuery := fmt.Sprintf(`SELECT session_id, question_id, value FROM quiz_answers
		WHERE session_id IN (SELECT id FROM funnel_records WHERE %s)`, where)
	answerRows, err := s.db.QueryContext(ctx, answerQuery, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := answerRows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	for answerRows.Next() {
		var sessionID, questionID, value string
		if err := answerRows.Scan(&sessionID, &questionID, &value); err != nil {
			return nil, err
		}
		i, ok := index[sessionID]
		if !ok {
			continue
		}
		if records[i].Answers == nil {
			records[i].Answers = map[string]string{}
		}
		records[i].Answers[questionID] = value
	}
	if err := answerRows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// ListAnswers returns the stored answers of one session keyed by question id.
func (s *Store) ListAnswers(ctx context.Context, sessionID string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT question_id, value FROM quiz_answers WHERE session_id = ? ORDER BY answered_at ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	answers := map[string]string{}
	for rows.Next() {
		var questionID, value string
		if err := rows.Scan(&questionID, &value); err != nil {
			return nil, err
		}
		answers[questionID] = value
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return answers, nil
}

func filterClause(filter model.RecordFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Since != nil {
		clauses = append(clauses, "page_viewed_at >= ?")
		args = append(args, formatTime(*filter.Since))
	}
	if filter.Source != "" {
		source := filter.Source
		if source == model.DirectSource {
			source = ""
		}
		clauses = append(clauses, "utm_source = ?")
		args = append(args, source)
	}
	if filter.Variant != "" {
		clauses = append(clauses, "variant = ?")
		args = append(args, filter.Variant)
	}
	return strings.Join(clauses, " AND "), args
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseNullTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, v.String)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
