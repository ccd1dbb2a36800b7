// Package interceptor holds the unary interceptors of the loan gRPC server.
package interceptor

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/patric-chuzhbe/libloans/internal/logger"
)

// UnaryLoggingInterceptor logs calls of the listed methods with their duration
// and resulting status. Calls ending with a server side code are logged as errors.
func UnaryLoggingInterceptor(loggedMethods []string) grpc.UnaryServerInterceptor {
	logged := make(map[string]struct{}, len(loggedMethods))
	for _, m := range loggedMethods {
		logged[m] = struct{}{}
	}

	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if _, ok := logged[info.FullMethod]; !ok {
			return handler(ctx, req)
		}

		start := time.Now()

		resp, err := handler(ctx, req)

		duration := time.Since(start)
		st, _ := status.FromError(err)

		keysAndValues := []any{
			"method", info.FullMethod,
			"duration", duration,
			"code", st.Code().String(),
			"message", st.Message(),
		}
		switch st.Code() {
		case codes.Internal, codes.Unavailable, codes.Unknown:
			logger.Log.Errorw("gRPC request", keysAndValues...)
		default:
			logger.Log.Infow("gRPC request", keysAndValues...)
		}

		return resp, err
	}
}
