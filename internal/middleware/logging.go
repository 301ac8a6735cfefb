package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/wattsplit/pkg/api"
)

// LoggingInterceptor returns a Connect interceptor that logs every RPC call.
// Failed gates are not RPC errors, so responses carrying a verdict also log
// the stage that blocked the user.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			attrs := []any{
				"procedure", req.Spec().Procedure,
				"peer", req.Peer().Addr,
				"duration_ms", time.Since(start).Milliseconds(),
			}

			var connectErr *connect.Error
			switch {
			case errors.As(err, &connectErr):
				slog.Warn("RPC error", append(attrs, "code", connectErr.Code(), "error", connectErr.Message())...)
			case err != nil:
				slog.Error("RPC error", append(attrs, "error", err)...)
			default:
				slog.Info("RPC ok", append(attrs, verdictAttrs(resp)...)...)
			}

			return resp, err
		}
	}
}

// verdictAttrs returns the gate outcome of resp, if it carries one.
func verdictAttrs(resp connect.AnyResponse) []any {
	if resp == nil {
		return nil
	}
	gated, ok := resp.Any().(api.GatedResponse)
	if !ok {
		return nil
	}
	v := gated.GateVerdict()
	if v.OK {
		return []any{"gate", "pass", "stage", v.Stage}
	}
	return []any{"gate", "blocked", "stage", v.Stage, "kind", v.Kind}
}
