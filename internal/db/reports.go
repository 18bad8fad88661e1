package db

import (
	"context"

	"github.com/sowhat1234/yazamutforum/internal/models"
)

const reportColumns = "id, reporter_id, idea_id, comment_id, reason, created_at, status"

func reportDest(rp *models.Report) []any {
	return []any{&rp.ID, &rp.ReporterID, &rp.IdeaID, &rp.CommentID, &rp.Reason, ts(&rp.CreatedAt), &rp.Status}
}

// CreateReport creates a report on an idea or comment
func (r *Repository) CreateReport(ctx context.Context, rp *models.Report) error {
	rp.ID = newID()
	rp.CreatedAt = r.now().UTC()
	rp.Status = models.ReportOpen
	_, err := r.db.ExecContext(ctx, `INSERT INTO reports (id, reporter_id, idea_id, comment_id, reason, created_at, status)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rp.ID, rp.ReporterID, rp.IdeaID, rp.CommentID, rp.Reason, formatTime(rp.CreatedAt), rp.Status)
	return translate(err)
}

// GetReport retrieves a report by ID.
func (r *Repository) GetReport(ctx context.Context, id string) (*models.Report, error) {
	rp := &models.Report{}
	if err := r.db.QueryRowContext(ctx, "SELECT "+reportColumns+" FROM reports WHERE id = ?", id).Scan(reportDest(rp)...); err != nil {
		return nil, translate(err)
	}
	return rp, nil
}

// ListReports returns all reports, newest first
func (r *Repository) ListReports(ctx context.Context) ([]*models.Report, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+reportColumns+" FROM reports ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := []*models.Report{}
	for rows.Next() {
		rp := &models.Report{}
		if err := rows.Scan(reportDest(rp)...); err != nil {
			return nil, err
		}
		reports = append(reports, rp)
	}
	return reports, rows.Err()
}

// CloseReport closes a report
func (r *Repository) CloseReport(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE reports SET status = ? WHERE id = ?", models.ReportClosed, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}
