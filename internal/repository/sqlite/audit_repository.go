package sqlite

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
)

type auditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository creates a new AuditRepository implementation
func NewAuditRepository(db *sqlx.DB) repository.AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Insert(ctx context.Context, action string, meta models.RawJSON, now time.Time) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("audit_repo")
	log.Debug("recording audit entry: action=%s", action)

	res, err := r.db.ExecContext(ctx, `INSERT INTO audit_logs (action, meta, created_at) VALUES (?, ?, ?)`, action, meta, utc(now))
	if err != nil {
		log.Error("failed to record audit entry: %v", err)
		return 0, err
	}
	return res.LastInsertId()
}

func (r *auditRepository) List(ctx context.Context, limit int) ([]models.AuditLog, error) {
	log := logger.FromContext(ctx).WithPrefix("audit_repo")
	log.Debug("listing audit entries: limit=%d", limit)

	if limit <= 0 {
		limit = 50
	}
	var entries []models.AuditLog
	if err := r.db.SelectContext(ctx, &entries, `
SELECT id, action, meta, created_at FROM audit_logs ORDER BY id DESC LIMIT ?
`, limit); err != nil {
		log.Error("failed to list audit entries: %v", err)
		return nil, err
	}
	return entries, nil
}
