package runstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"motioncomic/internal/diagnostics"
	"motioncomic/internal/pipeline"
	"motioncomic/internal/scene"
	"motioncomic/internal/services"
	"motioncomic/internal/timeline"
)

const summaryColumns = "id, archive, status, page_count, pages_failed, panel_count, duration_ns, error_message, output_dir, created_at, updated_at"

// Create records a new running run.
func (s *Store) Create(ctx context.Context, id, archive string) (*Run, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("run id is required")
	}
	timestamp := now()
	if _, err := s.execWithRetry(ctx,
		`INSERT INTO runs (id, archive, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, archive, StatusRunning, timestamp, timestamp,
	); err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return s.Get(ctx, id)
}

// Finish stores the outcome of a run. result may be nil when the pipeline
// failed before producing one; runErr marks the run failed. Diagnostics
// replace any stored for the run.
func (s *Store) Finish(ctx context.Context, id string, result *pipeline.Result, runErr error) error {
	status := StatusCompleted
	var message string
	if runErr != nil {
		status = StatusFailed
		message = services.Details(runErr)
	}

	var (
		pageCount, pagesFailed, panelCount int
		duration                           time.Duration
		timelineJSON                       any
		diags                              []diagnostics.Diagnostic
	)
	if result != nil {
		pageCount = result.PageCount
		pagesFailed = len(result.PagesFailed)
		diags = result.Diagnostics
		if result.Timeline != nil {
			data, err := timeline.Marshal(result.Timeline)
			if err != nil {
				return err
			}
			timelineJSON = string(data)
			panelCount = len(result.Timeline.Panels())
			duration = result.Timeline.Duration()
		}
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE runs SET status = ?, page_count = ?, pages_failed = ?, panel_count = ?, duration_ns = ?,
                error_message = ?, timeline_json = ?, updated_at = ? WHERE id = ?`,
			status, pageCount, pagesFailed, panelCount, int64(duration),
			nullableString(message), timelineJSON, now(), id,
		)
		if err != nil {
			return fmt.Errorf("update run: %w", err)
		}
		if err := requireRow(res, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM diagnostics WHERE run_id = ?`, id); err != nil {
			return fmt.Errorf("clear diagnostics: %w", err)
		}
		for _, d := range diags {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO diagnostics (run_id, kind, stage, page, panel, message) VALUES (?, ?, ?, ?, ?, ?)`,
				id, string(d.Kind), d.Stage, d.Page, nullableString(string(d.Panel)), d.Message,
			); err != nil {
				return fmt.Errorf("insert diagnostic: %w", err)
			}
		}
		return nil
	})
}

// UpdateTimeline replaces the stored timeline of a run, typically after a
// re-flow.
func (s *Store) UpdateTimeline(ctx context.Context, id string, tl *timeline.Timeline) error {
	data, err := timeline.Marshal(tl)
	if err != nil {
		return err
	}
	res, err := s.execWithRetry(ctx,
		`UPDATE runs SET timeline_json = ?, duration_ns = ?, panel_count = ?, updated_at = ? WHERE id = ?`,
		string(data), int64(tl.Duration()), len(tl.Panels()), now(), id,
	)
	if err != nil {
		return fmt.Errorf("update timeline: %w", err)
	}
	return requireRow(res, id)
}

// SetOutputDir records where the render plan of a run was written.
func (s *Store) SetOutputDir(ctx context.Context, id, dir string) error {
	res, err := s.execWithRetry(ctx,
		`UPDATE runs SET output_dir = ?, updated_at = ? WHERE id = ?`,
		nullableString(dir), now(), id,
	)
	if err != nil {
		return fmt.Errorf("update output dir: %w", err)
	}
	return requireRow(res, id)
}

// Get fetches a run including its timeline. A missing run returns nil.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+summaryColumns+`, timeline_json FROM runs WHERE id = ?`, id)
	var timelineJSON sql.NullString
	run, err := scanRun(row, &timelineJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	if timelineJSON.Valid {
		run.TimelineJSON = []byte(timelineJSON.String)
	}
	return run, nil
}

// Resolve finds a run by full id or unique id prefix.
func (s *Store) Resolve(ctx context.Context, ref string) (*Run, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, services.Wrap(services.ErrValidation, "runstore", "resolve", "run id is required", nil)
	}
	if run, err := s.Get(ctx, ref); err != nil || run != nil {
		return run, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id FROM runs WHERE substr(id, 1, ?) = ? LIMIT 2`, len(ref), ref)
	if err != nil {
		return nil, fmt.Errorf("resolve run: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(ids) {
	case 0:
		return nil, services.Wrap(services.ErrNotFound, "runstore", "resolve", "no run matches "+ref, nil)
	case 1:
		return s.Get(ctx, ids[0])
	default:
		return nil, services.Wrap(services.ErrValidation, "runstore", "resolve", "run id prefix "+ref+" is ambiguous", nil)
	}
}

// List returns run summaries, newest first, without timelines. A limit of
// zero or less returns every run; statuses filter when given.
func (s *Store) List(ctx context.Context, limit int, statuses ...Status) ([]*Run, error) {
	query := `SELECT ` + summaryColumns + ` FROM runs`
	args := make([]any, 0, len(statuses)+1)
	if len(statuses) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(statuses)), ",")
		query += ` WHERE status IN (` + placeholders + `)`
		for _, status := range statuses {
			args = append(args, status)
		}
	}
	query += ` ORDER BY created_at DESC, rowid DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()
	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows, nil)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Diagnostics returns the stored diagnostics of a run in report order.
func (s *Store) Diagnostics(ctx context.Context, id string) ([]diagnostics.Diagnostic, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, stage, page, panel, message FROM diagnostics WHERE run_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("list diagnostics: %w", err)
	}
	defer rows.Close()
	var out []diagnostics.Diagnostic
	for rows.Next() {
		var (
			d     diagnostics.Diagnostic
			kind  string
			panel sql.NullString
		)
		if err := rows.Scan(&kind, &d.Stage, &d.Page, &panel, &d.Message); err != nil {
			return nil, err
		}
		d.Kind = diagnostics.Kind(kind)
		d.Panel = scene.PanelID(panel.String)
		out = append(out, d)
	}
	return out, rows.Err()
}

// Stats returns a count of runs grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM runs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("run stats: %w", err)
	}
	defer rows.Close()
	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// Remove deletes a run and its diagnostics.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("remove run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func requireRow(res sql.Result, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return services.Wrap(services.ErrNotFound, "runstore", "update", "run "+id, nil)
	}
	return nil
}

func scanRun(scanner interface{ Scan(dest ...any) error }, extra *sql.NullString) (*Run, error) {
	var (
		run                     Run
		status                  string
		durationNS              int64
		errorMessage, outputDir sql.NullString
		createdRaw, updatedRaw  string
	)
	dest := []any{
		&run.ID, &run.Archive, &status, &run.PageCount, &run.PagesFailed, &run.PanelCount,
		&durationNS, &errorMessage, &outputDir, &createdRaw, &updatedRaw,
	}
	if extra != nil {
		dest = append(dest, extra)
	}
	if err := scanner.Scan(dest...); err != nil {
		return nil, err
	}
	run.Status = Status(status)
	run.Duration = time.Duration(durationNS)
	run.ErrorMessage = errorMessage.String
	run.OutputDir = outputDir.String
	if created, err := parseTimeString(createdRaw); err == nil {
		run.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		run.UpdatedAt = updated
	}
	return &run, nil
}
