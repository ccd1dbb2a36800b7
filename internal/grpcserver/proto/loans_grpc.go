package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	LoanServiceName                = "libloans.LoanService"
	LoanServiceIssueLoanFullMethod = "/libloans.LoanService/IssueLoan"
	LoanServiceGetLoanFullMethod   = "/libloans.LoanService/GetLoan"
	LoanServicePingFullMethod      = "/libloans.LoanService/Ping"
)

// LoanServiceClient is the client API of libloans.LoanService.
type LoanServiceClient interface {
	IssueLoan(ctx context.Context, in *IssueLoanRequest, opts ...grpc.CallOption) (*IssueLoanResponse, error)
	GetLoan(ctx context.Context, in *GetLoanRequest, opts ...grpc.CallOption) (*GetLoanResponse, error)
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)
}

type loanServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewLoanServiceClient returns a client sending every call with the JSON codec.
func NewLoanServiceClient(cc grpc.ClientConnInterface) LoanServiceClient {
	return &loanServiceClient{cc: cc}
}

func (c *loanServiceClient) IssueLoan(ctx context.Context, in *IssueLoanRequest, opts ...grpc.CallOption) (*IssueLoanResponse, error) {
	out := new(IssueLoanResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, LoanServiceIssueLoanFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *loanServiceClient) GetLoan(ctx context.Context, in *GetLoanRequest, opts ...grpc.CallOption) (*GetLoanResponse, error) {
	out := new(GetLoanResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, LoanServiceGetLoanFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *loanServiceClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	out := new(PingResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, LoanServicePingFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// LoanServiceServer is the server API of libloans.LoanService.
type LoanServiceServer interface {
	IssueLoan(context.Context, *IssueLoanRequest) (*IssueLoanResponse, error)
	GetLoan(context.Context, *GetLoanRequest) (*GetLoanResponse, error)
	Ping(context.Context, *PingRequest) (*PingResponse, error)
}

// UnimplementedLoanServiceServer answers every method with codes.Unimplemented.
type UnimplementedLoanServiceServer struct{}

func (UnimplementedLoanServiceServer) IssueLoan(context.Context, *IssueLoanRequest) (*IssueLoanResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method IssueLoan not implemented")
}

func (UnimplementedLoanServiceServer) GetLoan(context.Context, *GetLoanRequest) (*GetLoanResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetLoan not implemented")
}

func (UnimplementedLoanServiceServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Ping not implemented")
}

func RegisterLoanServiceServer(s grpc.ServiceRegistrar, srv LoanServiceServer) {
	s.RegisterService(&LoanServiceDesc, srv)
}

func issueLoanHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(IssueLoanRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LoanServiceServer).IssueLoan(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: LoanServiceIssueLoanFullMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(LoanServiceServer).IssueLoan(ctx, req.(*IssueLoanRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getLoanHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(GetLoanRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LoanServiceServer).GetLoan(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: LoanServiceGetLoanFullMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(LoanServiceServer).GetLoan(ctx, req.(*GetLoanRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func pingHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(PingRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LoanServiceServer).Ping(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: LoanServicePingFullMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(LoanServiceServer).Ping(ctx, req.(*PingRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// LoanServiceDesc is the grpc.ServiceDesc of libloans.LoanService.
var LoanServiceDesc = grpc.ServiceDesc{
	ServiceName: LoanServiceName,
	HandlerType: (*LoanServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "IssueLoan",
			Handler:    issueLoanHandler,
		},
		{
			MethodName: "GetLoan",
			Handler:    getLoanHandler,
		},
		{
			MethodName: "Ping",
			Handler:    pingHandler,
		},
	},
	Streams:     []grpc.StreamDesc{},
}
