package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"civicdesk.org/internal/complaint"
	"civicdesk.org/internal/ids"
)

var _ complaint.Service = (*Store)(nil)

const complaintColumns = `id, title, description, category, status,
	coalesce(response,''), coalesce(agency_id,''), user_id, created_at, updated_at`

func scanComplaint(row interface{ Scan(...any) error }) (complaint.Complaint, error) {
	var c complaint.Complaint
	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Category, &c.Status,
		&c.Response, &c.AgencyID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return complaint.Complaint{}, complaint.ErrNotFound
	}
	if err != nil {
		return complaint.Complaint{}, err
	}
	return c, nil
}

func (s *Store) Submit(ctx context.Context, nc complaint.NewComplaint) (complaint.Complaint, error) {
	if strings.TrimSpace(nc.Title) == "" || strings.TrimSpace(nc.Description) == "" ||
		strings.TrimSpace(nc.Category) == "" || strings.TrimSpace(nc.UserID) == "" {
		return complaint.Complaint{}, complaint.ErrInvalidInput
	}

	now := time.Now().UTC()
	c := complaint.Complaint{
		ID:          ids.New(),
		Title:       strings.TrimSpace(nc.Title),
		Description: strings.TrimSpace(nc.Description),
		Category:    strings.TrimSpace(nc.Category),
		Status:      complaint.StatusPending,
		UserID:      nc.UserID,
		Attachments: nc.Attachments,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return complaint.Complaint{}, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		insert into complaints(id, title, description, category, status, user_id, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8)
	`, c.ID, c.Title, c.Description, c.Category, c.Status, c.UserID, c.CreatedAt, c.UpdatedAt); err != nil {
		return complaint.Complaint{}, err
	}
	for i := range c.Attachments {
		att := &c.Attachments[i]
		if att.ID == "" {
			att.ID = ids.New()
		}
		if _, err := tx.ExecContext(ctx, `
			insert into attachments(id, complaint_id, file_name, content_type, size, storage_path)
			values ($1,$2,$3,$4,$5,$6)
		`, att.ID, c.ID, att.FileName, att.ContentType, att.Size, att.StoragePath); err != nil {
			return complaint.Complaint{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return complaint.Complaint{}, err
	}
	return c, nil
}

func (s *Store) Get(ctx context.Context, id string) (complaint.Complaint, error) {
	c, err := scanComplaint(s.db.QueryRowContext(ctx,
		`select `+complaintColumns+` from complaints where id=$1`, id))
	if err != nil {
		return complaint.Complaint{}, err
	}
	atts, err := s.attachmentsFor(ctx, id)
	if err != nil {
		return complaint.Complaint{}, err
	}
	c.Attachments = atts
	return c, nil
}

func (s *Store) attachmentsFor(ctx context.Context, complaintID string) ([]complaint.Attachment, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, file_name, coalesce(content_type,''), size, storage_path
		from attachments where complaint_id=$1 order by id
	`, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []complaint.Attachment
	for rows.Next() {
		var a complaint.Attachment
		if err := rows.Scan(&a.ID, &a.FileName, &a.ContentType, &a.Size, &a.StoragePath); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) List(ctx context.Context, scope complaint.Scope) ([]complaint.Complaint, error) {
	query := `select ` + complaintColumns + ` from complaints`
	var (
		args  []any
		where []string
	)
	if scope.UserID != "" {
		args = append(args, scope.UserID)
		where = append(where, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if scope.AgencyID != "" {
		args = append(args, scope.AgencyID)
		where = append(where, fmt.Sprintf("agency_id=$%d", len(args)))
	}
	if len(where) > 0 {
		query += " where " + strings.Join(where, " and ")
	}
	query += " order by created_at"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]complaint.Complaint, 0)
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) Respond(ctx context.Context, id, status, response string) (complaint.Complaint, error) {
	if !complaint.ValidStatus(status) {
		return complaint.Complaint{}, fmt.Errorf("%w: %s", complaint.ErrInvalidStatus, status)
	}
	return scanComplaint(s.db.QueryRowContext(ctx, `
		update complaints set status=$2, response=nullif($3,''), updated_at=now()
		where id=$1
		returning `+complaintColumns, id, status, response))
}

func (s *Store) AssignAgency(ctx context.Context, id, agencyID string) (complaint.Complaint, error) {
	agencyID = strings.TrimSpace(agencyID)
	if agencyID == "" {
		return complaint.Complaint{}, fmt.Errorf("%w: agencyId is required", complaint.ErrInvalidInput)
	}
	return scanComplaint(s.db.QueryRowContext(ctx, `
		update complaints set agency_id=$2, status=$3, updated_at=now()
		where id=$1
		returning `+complaintColumns, id, agencyID, complaint.StatusAssigned))
}

func (s *Store) Overall(ctx context.Context) (complaint.OverallStats, error) {
	var stats complaint.OverallStats
	err := s.db.QueryRowContext(ctx, `
		select count(*),
		       count(*) filter (where status='pending'),
		       count(*) filter (where status='assigned'),
		       count(*) filter (where status='in_progress'),
		       count(*) filter (where status='resolved')
		from complaints
	`).Scan(&stats.Total, &stats.Pending, &stats.Assigned, &stats.InProgress, &stats.Resolved)
	if err != nil {
		return complaint.OverallStats{}, err
	}
	if stats.Total > 0 {
		stats.ResolutionRate = float64(stats.Resolved) / float64(stats.Total)
	}
	return stats, nil
}

func (s *Store) StatusDistribution(ctx context.Context) ([]complaint.StatusCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`select status, count(*) from complaints group by status order by status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []complaint.StatusCount
	for rows.Next() {
		var sc complaint.StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func (s *Store) CategoryDistribution(ctx context.Context) ([]complaint.CategoryCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`select category, count(*) from complaints group by category order by category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []complaint.CategoryCount
	for rows.Next() {
		var cc complaint.CategoryCount
		if err := rows.Scan(&cc.Category, &cc.Count); err != nil {
			return nil, err
		}
		out = append(out, cc)
	}
	return out, rows.Err()
}

func (s *Store) Trend(ctx context.Context) ([]complaint.TrendPoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		select to_char(date_trunc('month', created_at), 'YYYY-MM') as month, count(*)
		from complaints group by 1 order by 1
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []complaint.TrendPoint
	for rows.Next() {
		var tp complaint.TrendPoint
		if err := rows.Scan(&tp.Month, &tp.Count); err != nil {
			return nil, err
		}
		out = append(out, tp)
	}
	return out, rows.Err()
}

func (s *Store) AgencyPerformanceReport(ctx context.Context) ([]complaint.AgencyPerformance, error) {
	rows, err := s.db.QueryContext(ctx, `
		select agency_id, count(*),
		       count(*) filter (where status='resolved')
		from complaints
		where agency_id is not null
		group by agency_id order by agency_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []complaint.AgencyPerformance
	for rows.Next() {
		var ap complaint.AgencyPerformance
		if err := rows.Scan(&ap.AgencyID, &ap.Total, &ap.Resolved); err != nil {
			return nil, err
		}
		if ap.Total > 0 {
			ap.ResolutionRate = float64(ap.Resolved) / float64(ap.Total)
		}
		out = append(out, ap)
	}
	return out, rows.Err()
}
