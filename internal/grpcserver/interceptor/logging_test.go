package interceptor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/patric-chuzhbe/libloans/internal/logger"
)

func TestUnaryLoggingInterceptor(t *testing.T) {
	require.NoError(t, logger.Init("debug"))

	intercept := UnaryLoggingInterceptor([]string{"/libloans.LoanService/GetLoan"})

	type tTestCase struct {
		name       string
		fullMethod string
		handlerErr error
	}
	testCases := []tTestCase{
		{name: "logged ok", fullMethod: "/libloans.LoanService/GetLoan"},
		{name: "logged failure", fullMethod: "/libloans.LoanService/GetLoan", handlerErr: status.Error(codes.Internal, "boom")},
		{name: "not logged", fullMethod: "/libloans.LoanService/Ping"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			calls := 0
			handler := func(ctx context.Context, req any) (any, error) {
				calls++
				return "response", testCase.handlerErr
			}

			resp, err := intercept(
				context.Background(),
				"request",
				&grpc.UnaryServerInfo{FullMethod: testCase.fullMethod},
				handler,
			)

			assert.Equal(t, 1, calls)
			assert.Equal(t, "response", resp)
			assert.Equal(t, testCase.handlerErr, err)
		})
	}
}
