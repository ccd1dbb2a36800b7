// Package grpcserver exposes the loan service over gRPC.
package grpcserver

import (
	"fmt"
	"net"

	"google.golang.org/grpc"

	"github.com/patric-chuzhbe/libloans/internal/grpcserver/interceptor"
	pb "github.com/patric-chuzhbe/libloans/internal/grpcserver/proto"
)

// NewGRPCServer creates the gRPC server with the loan handler registered and
// the listener it should serve on.
func NewGRPCServer(addr string, handler *LoanHandler) (*grpc.Server, net.Listener, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("in internal/grpcserver/server.go/NewGRPCServer(): error while `net.Listen()` calling: %w", err)
	}

	server := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			interceptor.UnaryLoggingInterceptor([]string{
				pb.LoanServiceIssueLoanFullMethod,
				pb.LoanServiceGetLoanFullMethod,
			}),
		),
	)
	pb.RegisterLoanServiceServer(server, handler)

	return server, lis, nil
}
