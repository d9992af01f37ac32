package server

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/oshokin/home-security/internal/logger"
	"github.com/oshokin/home-security/internal/service/common"
)

// loggingInterceptor gives every request the server logger, tagged with the
// calling actor when the client sent one, and logs the outcome.
func loggingInterceptor(base context.Context) grpc.UnaryServerInterceptor {
	log := logger.FromContext(base)

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx = logger.ToContext(ctx, log)
		ctx = logger.WithKV(ctx, "method", info.FullMethod)

		if actor, ok := common.ActorFromIncomingContext(ctx); ok {
			ctx = logger.WithKV(ctx, "actor", actor.String())
		}

		started := time.Now()

		resp, err := handler(ctx, req)

		logger.DebugKV(ctx, "RPC handled",
			"code", status.Code(err).String(),
			"duration", time.Since(started),
		)

		return resp, err
	}
}
