package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
)

// groupScoped is implemented by request messages that target one group.
type groupScoped interface {
	GetGroupID() string
}

// LoggingInterceptor returns a Connect interceptor that logs every RPC call
// with its procedure, caller, group, code and duration. Client errors log at
// WARN and server errors at ERROR.
//
// Register it after the identity interceptor so the user ID is known.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			attrs := []any{
				"procedure", req.Spec().Procedure,
				"user_id", GetUserID(ctx),
			}
			if scoped, ok := req.Any().(groupScoped); ok && scoped.GetGroupID() != "" {
				attrs = append(attrs, "group_id", scoped.GetGroupID())
			}

			resp, err := next(ctx, req)

			attrs = append(attrs, "duration_ms", time.Since(start).Milliseconds())
			if err == nil {
				slog.Info("RPC ok", attrs...)
				return resp, nil
			}

			code := connect.CodeOf(err)
			attrs = append(attrs, "code", code.String())
			var connectErr *connect.Error
			if errors.As(err, &connectErr) {
				attrs = append(attrs, "error", connectErr.Message())
			} else {
				attrs = append(attrs, "error", err)
			}

			if isServerError(code) {
				slog.Error("RPC error", attrs...)
			} else {
				slog.Warn("RPC error", attrs...)
			}
			return resp, err
		}
	}
}

func isServerError(code connect.Code) bool {
	switch code {
	case connect.CodeInternal, connect.CodeUnknown, connect.CodeDataLoss, connect.CodeUnavailable:
		return true
	}
	return false
}
