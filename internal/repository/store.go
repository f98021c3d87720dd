package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the querier shared by pool-bound and transaction-bound repositories.
// Both *pgxpool.Pool and pgx.Tx satisfy it.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store exposes every repository plus transactional composition. WithinTx
// hands the callback a Store whose repositories all run on the same
// transaction; the multi-row ledger mutations require it.
type Store interface {
	Tickets() TicketRepository
	History() TicketHistoryRepository
	Approvals() ApprovalRepository
	PartUsages() PartUsageRepository
	CentralInventory() CentralInventoryRepository
	TechnicianInventory() TechnicianInventoryRepository
	PartsRequests() PartsRequestRepository
	Assignments() AssignmentRepository
	Users() UserRepository
	Institutions() InstitutionRepository
	Printers() PrinterRepository
	Maintenance() MaintenanceRepository
	Parts() PartRepository

	WithinTx(ctx context.Context, fn func(Store) error) error
}

type pgStore struct {
	db   DB
	pool *pgxpool.Pool
}

// NewStore builds a Postgres-backed store over the given pool.
func NewStore(pool *pgxpool.Pool) Store {
	return &pgStore{db: pool, pool: pool}
}

func (s *pgStore) Tickets() TicketRepository                  { return &ticketRepository{db: s.db} }
func (s *pgStore) History() TicketHistoryRepository           { return &ticketHistoryRepository{db: s.db} }
func (s *pgStore) Approvals() ApprovalRepository              { return &approvalRepository{db: s.db} }
func (s *pgStore) PartUsages() PartUsageRepository            { return &partUsageRepository{db: s.db} }
func (s *pgStore) CentralInventory() CentralInventoryRepository {
	return &centralInventoryRepository{db: s.db}
}
func (s *pgStore) TechnicianInventory() TechnicianInventoryRepository {
	return &technicianInventoryRepository{db: s.db}
}
func (s *pgStore) PartsRequests() PartsRequestRepository { return &partsRequestRepository{db: s.db} }
func (s *pgStore) Assignments() AssignmentRepository     { return &assignmentRepository{db: s.db} }
func (s *pgStore) Users() UserRepository                 { return &userRepository{db: s.db} }
func (s *pgStore) Institutions() InstitutionRepository   { return &institutionRepository{db: s.db} }
func (s *pgStore) Printers() PrinterRepository           { return &printerRepository{db: s.db} }
func (s *pgStore) Maintenance() MaintenanceRepository    { return &maintenanceRepository{db: s.db} }
func (s *pgStore) Parts() PartRepository                 { return &partRepository{db: s.db} }

// WithinTx runs fn against transaction-bound repositories, committing on
// nil and rolling back on error. Nested calls reuse the enclosing
// transaction.
func (s *pgStore) WithinTx(ctx context.Context, fn func(Store) error) error {
	if s.pool == nil {
		return fn(s)
	}
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	txStore := &pgStore{db: tx}
	if err := fn(txStore); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
