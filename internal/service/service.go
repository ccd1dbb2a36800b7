// Package service issues and looks up library loans on top of a loan store.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/patric-chuzhbe/libloans/internal/loan"
)

const tracerName = "github.com/patric-chuzhbe/libloans/internal/service"

type transactioner interface {
	BeginTransaction() (*sql.Tx, error)

	RollbackTransaction(transaction *sql.Tx) error

	CommitTransaction(transaction *sql.Tx) error
}

type loansKeeper interface {
	LockIdentification(
		ctx context.Context,
		identification string,
		transaction *sql.Tx,
	) error

	FindLoanByIdentificationAndType(
		ctx context.Context,
		identification string,
		userType loan.UserType,
		transaction *sql.Tx,
	) (*loan.Loan, bool, error)

	FindLoanByID(ctx context.Context, id string) (*loan.Loan, bool, error)

	InsertLoan(
		ctx context.Context,
		record *loan.Loan,
		transaction *sql.Tx,
	) error

	GetNumberOfLoans(ctx context.Context) (int64, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type storage interface {
	transactioner
	loansKeeper
	pinger
}

var (
	// ErrUserAlreadyHasLoan is returned by Issue when the user already holds a guest loan.
	// It is informational: nothing was stored.
	ErrUserAlreadyHasLoan = errors.New("user already holds a loan")

	// ErrLoanNotFound is returned by Lookup for unknown ids.
	ErrLoanNotFound = errors.New("loan not found")

	// ErrInvalidRecord is returned by Lookup when the stored loan fails re-validation.
	ErrInvalidRecord = errors.New("stored loan contains invalid values")

	// ErrStoreFailure wraps every error coming from the loan store.
	ErrStoreFailure = errors.New("loan store failure")
)

// Service is the loan issuance engine. It keeps no mutable state of its own.
type Service struct {
	db     storage
	now    func() time.Time
	newID  func() string
	tracer trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now as the source of the issuance instant.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithIDGenerator replaces the random UUID generator used for new loan ids.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		s.newID = newID
	}
}

// WithTracerProvider sets the provider spans are created with.
// The global provider is used by default.
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(s *Service) {
		s.tracer = provider.Tracer(tracerName)
	}
}

func New(db storage, options ...Option) *Service {
	s := &Service{
		db:     db,
		now:    time.Now,
		newID:  uuid.NewString,
		tracer: otel.Tracer(tracerName),
	}
	for _, option := range options {
		option(s)
	}

	return s
}

// Issue validates the request, computes the due date and stores a new loan.
//
// The check for an existing loan runs first and only looks at loans stored with a
// single-loan user type (guests), whatever type the request carries.
func (s *Service) Issue(ctx context.Context, request loan.Request) (*loan.Loan, error) {
	ctx, span := s.tracer.Start(ctx, "Service.Issue", trace.WithAttributes(
		attribute.String("loan.user_identification", request.UserIdentification),
		attribute.Int("loan.user_type", int(request.UserType)),
	))
	defer span.End()

	record, err := s.issue(ctx, request)
	finishSpan(span, err)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("loan.id", record.ID))
	return record, nil
}

func (s *Service) issue(ctx context.Context, request loan.Request) (*loan.Loan, error) {
	tx, err := s.db.BeginTransaction()
	if err != nil {
		return nil, storeFailure(err)
	}
	defer func() {
		_ = s.db.RollbackTransaction(tx)
	}()

	if err := s.db.LockIdentification(ctx, request.UserIdentification, tx); err != nil {
		return nil, storeFailure(err)
	}

	for _, userType := range loan.SingleLoanUserTypes() {
		_, found, err := s.db.FindLoanByIdentificationAndType(ctx, request.UserIdentification, userType, tx)
		if err != nil {
			return nil, storeFailure(err)
		}
		if found {
			return nil, ErrUserAlreadyHasLoan
		}
	}

	if err := loan.ValidateIdentification(request.UserIdentification); err != nil {
		return nil, err
	}

	policy, err := loan.ResolvePolicy(request.UserType)
	if err != nil {
		return nil, err
	}

	// Stores keep at most microseconds, so the due date is cut to whole seconds
	// to read back exactly as issued.
	issuedAt := s.now().Truncate(time.Second)

	record := &loan.Loan{
		ID:                 s.newID(),
		ISBN:               request.ISBN,
		UserIdentification: request.UserIdentification,
		UserType:           request.UserType,
		DueDate:            loan.ComputeDueDate(issuedAt, policy.BusinessDayOffset),
	}

	if err := s.db.InsertLoan(ctx, record, tx); err != nil {
		return nil, storeFailure(err)
	}

	if err := s.db.CommitTransaction(tx); err != nil {
		return nil, storeFailure(err)
	}

	return record, nil
}

// Lookup returns the stored loan with the given id after re-validating it.
func (s *Service) Lookup(ctx context.Context, id string) (*loan.Loan, error) {
	ctx, span := s.tracer.Start(ctx, "Service.Lookup", trace.WithAttributes(
		attribute.String("loan.id", id),
	))
	defer span.End()

	record, err := s.lookup(ctx, id)
	finishSpan(span, err)

	return record, err
}

func (s *Service) lookup(ctx context.Context, id string) (*loan.Loan, error) {
	record, found, err := s.db.FindLoanByID(ctx, id)
	if err != nil {
		return nil, storeFailure(err)
	}
	if !found {
		return nil, ErrLoanNotFound
	}

	if err := loan.ValidateRecord(record); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}

	// Stores may hand the due date back in another zone.
	result := *record
	result.DueDate = result.DueDate.In(s.now().Location())

	return &result, nil
}

// Stats returns the number of stored loans.
func (s *Service) Stats(ctx context.Context) (int64, error) {
	count, err := s.db.GetNumberOfLoans(ctx)
	if err != nil {
		return 0, storeFailure(err)
	}

	return count, nil
}

// Ping checks the health of the loan store.
func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func storeFailure(err error) error {
	return fmt.Errorf("%w: %w", ErrStoreFailure, err)
}

func finishSpan(span trace.Span, err error) {
	if err == nil || errors.Is(err, ErrUserAlreadyHasLoan) {
		span.SetStatus(codes.Ok, "")
		return
	}

	span.RecordError(err)
	if errors.Is(err, ErrStoreFailure) {
		span.SetStatus(codes.Error, err.Error())
	}
}
