package repository

import (
	"cleaning-booking/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	Payment   PaymentRepository
	Reconcile ReconcileRepository
	Audit     AuditRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		Payment:   NewPaymentRepository(db, log),
		Reconcile: NewReconcileRepository(db, log),
		Audit:     NewAuditRepository(db, log),
	}
}
