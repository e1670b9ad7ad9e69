package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/apperr"
	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/middleware"
)

// toConnect maps a domain error onto a Connect status code.
func toConnect(err error) error {
	if err == nil {
		return nil
	}
	var ce *connect.Error
	if errors.As(err, &ce) {
		return ce
	}
	if errors.Is(err, context.Canceled) {
		return connect.NewError(connect.CodeCanceled, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	}

	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return connect.NewError(connect.CodeInvalidArgument, err)
	case apperr.KindNotFound:
		return connect.NewError(connect.CodeNotFound, err)
	case apperr.KindForbidden:
		return connect.NewError(connect.CodePermissionDenied, err)
	case apperr.KindConflict:
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case apperr.KindDependency:
		return connect.NewError(connect.CodeUnavailable, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

// fail logs a failed call and converts err for the wire. Caller mistakes are
// logged at warn, everything else at error.
func fail(logger *slog.Logger, msg string, err error, args ...any) error {
	cerr := toConnect(err)
	args = append(args, "error", err)
	switch connect.CodeOf(cerr) {
	case connect.CodeInternal, connect.CodeUnavailable, connect.CodeUnknown:
		logger.Error(msg, args...)
	default:
		logger.Warn(msg, args...)
	}
	return cerr
}

// actorFrom returns the authenticated caller set by the auth middleware.
func actorFrom(ctx context.Context) (ledger.Actor, error) {
	p, ok := middleware.GetPrincipal(ctx)
	if !ok {
		return ledger.Actor{}, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return ledger.Actor{UserID: p.UserID, Email: p.Email}, nil
}
