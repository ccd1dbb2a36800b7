package grpcserver

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pb "github.com/patric-chuzhbe/libloans/internal/grpcserver/proto"
	"github.com/patric-chuzhbe/libloans/internal/loan"
	"github.com/patric-chuzhbe/libloans/internal/logger"
	"github.com/patric-chuzhbe/libloans/internal/models"
	"github.com/patric-chuzhbe/libloans/internal/service"
)

type loanService interface {
	Issue(ctx context.Context, request loan.Request) (*loan.Loan, error)
	Lookup(ctx context.Context, id string) (*loan.Loan, error)
	Ping(ctx context.Context) error
}

// LoanHandler serves libloans.LoanService on top of the loan service.
type LoanHandler struct {
	pb.UnimplementedLoanServiceServer
	svc loanService
}

func NewLoanHandler(svc loanService) *LoanHandler {
	return &LoanHandler{svc: svc}
}

func (h *LoanHandler) IssueLoan(ctx context.Context, req *pb.IssueLoanRequest) (*pb.IssueLoanResponse, error) {
	record, err := h.svc.Issue(ctx, loan.Request{
		ISBN:               req.GetIsbn(),
		UserIdentification: req.GetUserIdentification(),
		UserType:           loan.UserType(req.GetUserType()),
	})

	switch {
	case err == nil:
		return &pb.IssueLoanResponse{
			Id:      record.ID,
			DueDate: record.DueDate.Format(time.RFC3339),
		}, nil

	case errors.Is(err, service.ErrUserAlreadyHasLoan):
		return &pb.IssueLoanResponse{
			AlreadyHasLoan: true,
			Message:        models.MessageAlreadyHasLoan(req.GetUserIdentification()),
		}, nil

	case errors.Is(err, loan.ErrInvalidIdentification):
		return nil, status.Error(codes.InvalidArgument, models.MessageInvalidIdentification(req.GetUserIdentification()))

	case errors.Is(err, loan.ErrInvalidUserType):
		return nil, status.Error(codes.InvalidArgument, models.MessageInvalidUserType)

	default:
		logger.Log.Errorln("gRPC loan issuance failed", "err", err)
		return nil, status.Error(codes.Internal, models.MessageInternalError(err))
	}
}

func (h *LoanHandler) GetLoan(ctx context.Context, req *pb.GetLoanRequest) (*pb.GetLoanResponse, error) {
	parsedID, err := uuid.Parse(req.GetId())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, models.MessageInvalidLoanID)
	}
	id := parsedID.String()

	record, err := h.svc.Lookup(ctx, id)

	switch {
	case err == nil:
		return &pb.GetLoanResponse{
			Id:                 record.ID,
			Isbn:               record.ISBN,
			UserIdentification: record.UserIdentification,
			UserType:           int32(record.UserType),
			DueDate:            record.DueDate.Format(time.RFC3339),
		}, nil

	case errors.Is(err, service.ErrLoanNotFound):
		return nil, status.Error(codes.NotFound, models.MessageLoanNotFound(id))

	case errors.Is(err, service.ErrInvalidRecord):
		return nil, status.Error(codes.FailedPrecondition, models.MessageInvalidRecord)

	default:
		logger.Log.Errorln("gRPC loan lookup failed", "id", id, "err", err)
		return nil, status.Error(codes.Internal, models.MessageInternalError(err))
	}
}

func (h *LoanHandler) Ping(ctx context.Context, _ *pb.PingRequest) (*pb.PingResponse, error) {
	if err := h.svc.Ping(ctx); err != nil {
		return nil, status.Error(codes.Unavailable, "storage is unavailable")
	}

	return &pb.PingResponse{}, nil
}
