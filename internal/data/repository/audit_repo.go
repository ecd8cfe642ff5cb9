package repository

import (
	"context"
	"encoding/json"
	"time"

	"cleaning-booking/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuditRepository appends to the payment_errors and payment_logs
// collections. Once PayFast has received its 200 these rows are the only
// trail an operator has, but a failed audit write must never break the
// pipeline itself, so both methods swallow errors after logging them.
type AuditRepository interface {
	LogError(ctx context.Context, eventType string, data map[string]any)
	LogSuccess(ctx context.Context, eventType string, data map[string]any)
}

type auditRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewAuditRepository(db database.PgxIface, log *zap.Logger) AuditRepository {
	return &auditRepository{
		db:  db,
		log: log.With(zap.String("repository", "audit")),
	}
}

func (r *auditRepository) LogError(ctx context.Context, eventType string, data map[string]any) {
	r.append(ctx, "payment_errors", eventType, data)
}

func (r *auditRepository) LogSuccess(ctx context.Context, eventType string, data map[string]any) {
	r.append(ctx, "payment_logs", eventType, data)
}

func (r *auditRepository) append(ctx context.Context, table, eventType string, data map[string]any) {
	payload, err := json.Marshal(data)
	if err != nil {
		r.log.Error("Failed to marshal audit payload",
			zap.Error(err),
			zap.String("table", table),
			zap.String("event_type", eventType),
		)
		return
	}

	query := `INSERT INTO ` + table + ` (id, type, data, created_at) VALUES ($1, $2, $3, $4)`

	_, err = r.db.Exec(ctx, query, uuid.New(), eventType, payload, time.Now())
	if err != nil {
		r.log.Error("Failed to write audit row",
			zap.Error(err),
			zap.String("table", table),
			zap.String("event_type", eventType),
		)
	}
}
