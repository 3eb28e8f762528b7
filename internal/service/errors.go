package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/storage"
)

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// toConnectError maps engine and storage errors to Connect codes.
// Errors that are already *connect.Error pass through unchanged.
func toConnectError(err error) error {
	var (
		connectErr   *connect.Error
		invalid      *calculator.InvalidSplitError
		inconsistent *calculator.InconsistentLedgerError
	)
	switch {
	case errors.As(err, &connectErr):
		return connectErr
	case errors.As(err, &invalid):
		return connect.NewError(connect.CodeInvalidArgument, invalid)
	case errors.As(err, &inconsistent):
		return connect.NewError(connect.CodeInternal, inconsistent)
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, storage.ErrStatusConflict):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

func settledExpenseError(expenseID string) error {
	return connect.NewError(connect.CodeFailedPrecondition, fmt.Errorf("expense %s is settled and can no longer change", expenseID))
}

func invalidArgument(format string, args ...any) error {
	return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf(format, args...))
}

// requireUser returns the authenticated caller or an Unauthenticated error.
func requireUser(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, fmt.Errorf("authentication required"))
	}
	return userID, nil
}

func requireField(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return invalidArgument("%s is required", name)
	}
	return nil
}

// normalizeCurrency upper-cases code, falling back to def when empty.
func normalizeCurrency(code, def string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = def
	}
	if !currencyPattern.MatchString(code) {
		return "", invalidArgument("invalid currency %q", code)
	}
	return code, nil
}
