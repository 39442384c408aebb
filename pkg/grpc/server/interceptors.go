package server

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

func peerAddr(ctx context.Context) string {
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		return p.Addr.String()
	}
	return "unknown"
}

func logCompletion(logger *zap.Logger, method, client string, start time.Time, err error) {
	fields := []zap.Field{
		zap.String("method", method),
		zap.String("client_addr", client),
		zap.Duration("duration", time.Since(start)),
		zap.String("status_code", status.Code(err).String()),
	}
	if err != nil {
		st, _ := status.FromError(err)
		logger.Error("gRPC request failed", append(fields,
			zap.String("status_message", st.Message()),
			zap.Error(err))...)
		return
	}
	logger.Info("gRPC request completed", fields...)
}

// LoggingInterceptor logs every unary call with its duration and status code.
func LoggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logCompletion(logger, info.FullMethod, peerAddr(ctx), start, err)
		return resp, err
	}
}

// StreamLoggingInterceptor logs each stream when it ends, e.g. health Watch.
func StreamLoggingInterceptor(logger *zap.Logger) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		client := peerAddr(ss.Context())
		logger.Debug("gRPC stream opened", zap.String("method", info.FullMethod), zap.String("client_addr", client))

		err := handler(srv, ss)
		logCompletion(logger, info.FullMethod, client, start, err)
		return err
	}
}
