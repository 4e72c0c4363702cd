package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/niouspark-cmd/student-hub-sub000/internal/models"
)

// AuditRepository persists operator override actions.
type AuditRepository struct {
	db *sqlx.DB
}

func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Create(ctx context.Context, record *models.AuditRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	err := r.db.GetContext(ctx, record, `
		INSERT INTO audit_log (id, operator_id, order_id, action, detail)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, operator_id, order_id, action, detail, created_at
	`, record.ID, record.OperatorID, record.OrderID, record.Action, record.Detail)
	if err != nil {
		return fmt.Errorf("audit repository: create %w", err)
	}
	return nil
}

func (r *AuditRepository) List(ctx context.Context, limit, offset int) ([]models.AuditRecord, error) {
	var records []models.AuditRecord
	err := r.db.SelectContext(ctx, &records, `
		SELECT id, operator_id, order_id, action, detail, created_at
		FROM audit_log ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`, limit, offset)
	return records, err
}
