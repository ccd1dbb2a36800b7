// Package postgresdb provides a PostgreSQL-based implementation of the loan store.
// Queries are built with goqu, rows are mapped with sqlx and the schema is
// kept up to date with goose migrations.
package postgresdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"

	"github.com/patric-chuzhbe/libloans/internal/db/storage"
	"github.com/patric-chuzhbe/libloans/internal/loan"
)

const (
	dialectPostgres       = "postgres"
	tableLoans            = "loans"
	colID                 = "id"
	colISBN               = "isbn"
	colUserIdentification = "user_identification"
	colUserType           = "user_type"
	colDueDate            = "due_date"
	colCreatedAt          = "created_at"
	pgUniqueViolation     = "23505"
)

// PostgresDB is a PostgreSQL-backed loan store.
type PostgresDB struct {
	database          *sqlx.DB
	connectionTimeout time.Duration
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

type executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type initOptions struct {
	DBPreReset bool
}

// InitOption defines a functional option for configuring database initialization.
type InitOption func(*initOptions)

// WithDBPreReset enables dropping every table before the migrations run.
// It is meant for test setups.
func WithDBPreReset(value bool) InitOption {
	return func(options *initOptions) {
		options.DBPreReset = value
	}
}

// New connects to PostgreSQL, applies the migrations found in migrationsDir
// and returns a ready store.
func New(
	ctx context.Context,
	databaseDSN string,
	connectionTimeout time.Duration,
	migrationsDir string,
	optionsProto ...InitOption,
) (*PostgresDB, error) {
	options := &initOptions{
		DBPreReset: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	database, err := sqlx.Open("pgx", databaseDSN)
	if err != nil {
		return nil, fmt.Errorf("in internal/db/postgresdb/postgresdb.go/New(): error while `sqlx.Open()` calling: %w", err)
	}

	result := &PostgresDB{
		database:          database,
		connectionTimeout: connectionTimeout,
	}

	if err := result.Ping(ctx); err != nil {
		return nil, fmt.Errorf("in internal/db/postgresdb/postgresdb.go/New(): error while `result.Ping()` calling: %w", err)
	}

	if options.DBPreReset {
		if err := result.resetDB(ctx); err != nil {
			return nil, fmt.Errorf("in internal/db/postgresdb/postgresdb.go/New(): error while `result.resetDB()` calling: %w", err)
		}
	}

	if err := goose.SetDialect(dialectPostgres); err != nil {
		return nil, fmt.Errorf("in internal/db/postgresdb/postgresdb.go/New(): error while `goose.SetDialect()` calling: %w", err)
	}

	if err := goose.UpContext(ctx, result.database.DB, migrationsDir); err != nil {
		return nil, fmt.Errorf("in internal/db/postgresdb/postgresdb.go/New(): error while `goose.UpContext()` calling: %w", err)
	}

	return result, nil
}

func (db *PostgresDB) BeginTransaction() (*sql.Tx, error) {
	return db.database.Begin()
}

// CommitTransaction commits the given SQL transaction.
func (db *PostgresDB) CommitTransaction(transaction *sql.Tx) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic occurred while committing transaction: %v", r)
		}
	}()

	return transaction.Commit()
}

// RollbackTransaction rolls the transaction back. Rolling back an already
// finished transaction is not an error.
func (db *PostgresDB) RollbackTransaction(transaction *sql.Tx) error {
	err := transaction.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}

	return err
}

// LockIdentification takes a transaction-scoped advisory lock keyed by the identification.
// Concurrent issuance for the same user waits here until the holder commits or rolls back.
func (db *PostgresDB) LockIdentification(
	ctx context.Context,
	identification string,
	transaction *sql.Tx,
) error {
	if transaction == nil {
		return nil
	}

	query, args, err := buildLockQuery(identification)
	if err != nil {
		return err
	}

	_, err = transaction.ExecContext(ctx, query, args...)
	return err
}

// FindLoanByIdentificationAndType returns the earliest loan stored for the
// identification with exactly the given user type.
func (db *PostgresDB) FindLoanByIdentificationAndType(
	ctx context.Context,
	identification string,
	userType loan.UserType,
	transaction *sql.Tx,
) (*loan.Loan, bool, error) {
	var database queryer
	if transaction == nil {
		database = db.database
	} else {
		database = transaction
	}

	query, args, err := buildFindByIdentificationAndTypeQuery(identification, userType)
	if err != nil {
		return nil, false, err
	}

	rows, err := database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	var records []loan.Loan
	if err := sqlx.StructScan(rows, &records); err != nil {
		return nil, false, err
	}

	if len(records) == 0 {
		return nil, false, nil
	}

	return &records[0], true, nil
}

func (db *PostgresDB) FindLoanByID(ctx context.Context, id string) (*loan.Loan, bool, error) {
	query, args, err := buildFindByIDQuery(id)
	if err != nil {
		return nil, false, err
	}

	var record loan.Loan
	err = db.database.GetContext(ctx, &record, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return &record, true, nil
}

func (db *PostgresDB) InsertLoan(
	ctx context.Context,
	record *loan.Loan,
	transaction *sql.Tx,
) error {
	var database executor
	if transaction == nil {
		database = db.database
	} else {
		database = transaction
	}

	query, args, err := buildInsertQuery(record)
	if err != nil {
		return err
	}

	_, err = database.ExecContext(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return storage.ErrLoanAlreadyExists
		}
		return err
	}

	return nil
}

func (db *PostgresDB) GetNumberOfLoans(ctx context.Context) (int64, error) {
	query, _, err := goqu.Dialect(dialectPostgres).
		From(tableLoans).
		Select(goqu.COUNT(goqu.Star())).
		ToSQL()
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.database.GetContext(ctx, &count, query); err != nil {
		return 0, err
	}

	return count, nil
}

// Ping verifies connectivity with the PostgreSQL database within the configured timeout.
func (db *PostgresDB) Ping(ctx context.Context) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, db.connectionTimeout)
	defer cancel()

	return db.database.PingContext(ctxWithTimeout)
}

// Close closes the database connection and releases any associated resources.
func (db *PostgresDB) Close() error {
	return db.database.Close()
}

func (db *PostgresDB) resetDB(ctx context.Context) error {
	_, err := db.database.ExecContext(
		ctx,
		`
			DO $$
			DECLARE
				r RECORD;
			BEGIN
				FOR r IN (SELECT tablename FROM pg_tables WHERE schemaname = 'public') LOOP
					EXECUTE 'DROP TABLE IF EXISTS ' || quote_ident(r.tablename) || ' CASCADE';
				END LOOP;
			END $$;
		`,
	)
	if err != nil {
		return fmt.Errorf(
			"in internal/db/postgresdb/postgresdb.go/resetDB(): error while `db.database.ExecContext()` calling: %w",
			err,
		)
	}
	return nil
}

func selectLoans() *goqu.SelectDataset {
	return goqu.Dialect(dialectPostgres).
		From(tableLoans).
		Select(colID, colISBN, colUserIdentification, colUserType, colDueDate)
}

func buildFindByIdentificationAndTypeQuery(identification string, userType loan.UserType) (string, []interface{}, error) {
	return selectLoans().
		Where(goqu.Ex{
			colUserIdentification: identification,
			colUserType:           int(userType),
		}).
		Order(goqu.I(colCreatedAt).Asc()).
		Limit(1).
		Prepared(true).
		ToSQL()
}

func buildFindByIDQuery(id string) (string, []interface{}, error) {
	return selectLoans().
		Where(goqu.Ex{colID: id}).
		Prepared(true).
		ToSQL()
}

func buildInsertQuery(record *loan.Loan) (string, []interface{}, error) {
	return goqu.Dialect(dialectPostgres).
		Insert(tableLoans).
		Rows(goqu.Record{
			colID:                 record.ID,
			colISBN:               record.ISBN,
			colUserIdentification: record.UserIdentification,
			colUserType:           int(record.UserType),
			colDueDate:            record.DueDate,
		}).
		Prepared(true).
		ToSQL()
}

func buildLockQuery(identification string) (string, []interface{}, error) {
	return goqu.Dialect(dialectPostgres).
		Select(goqu.Func("pg_advisory_xact_lock", goqu.Func("hashtext", identification))).
		Prepared(true).
		ToSQL()
}
