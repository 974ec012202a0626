package store

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const schemaName = "adaptgrant"

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx, so every repository
// runs unchanged inside or outside a transaction.
type DBTX interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func psql() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

func table(name string) string {
	return schemaName + "." + name
}

type Store struct {
	db DBTX

	Applicants    *ApplicantRepository
	Businesses    *BusinessRepository
	Applications  *ApplicationRepository
	StatusChanges *StatusChangeRepository
	Scoring       *ScoringRepository
	Scores        *ScoreRepository
	Eligibility   *EligibilityRepository
	Evaluators    *EvaluatorRepository
	Documents     *DocumentRepository
	Support       *SupportRepository
	Analytics     *AnalyticsRepository
}

func New(db DBTX) *Store {
	return &Store{
		db:            db,
		Applicants:    NewApplicantRepository(db),
		Businesses:    NewBusinessRepository(db),
		Applications:  NewApplicationRepository(db),
		StatusChanges: NewStatusChangeRepository(db),
		Scoring:       NewScoringRepository(db),
		Scores:        NewScoreRepository(db),
		Eligibility:   NewEligibilityRepository(db),
		Evaluators:    NewEvaluatorRepository(db),
		Documents:     NewDocumentRepository(db),
		Support:       NewSupportRepository(db),
		Analytics:     NewAnalyticsRepository(db),
	}
}

// WithTx runs fn against a Store bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise. Calling
// WithTx on a transactional Store opens a savepoint.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		return fn(New(tx))
	})
}

// Ping is used by the health check.
func (s *Store) Ping(ctx context.Context) error {
	var one int
	return s.db.QueryRow(ctx, "SELECT 1").Scan(&one)
}
