// Package apperr classifies data-access failures into a small set of kinds
// so callers branch on a tag instead of on driver error strings.
package apperr

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

type Kind int

const (
	Unknown Kind = iota
	NotFound
	Validation
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case Validation:
		return "validation"
	default:
		return "unknown"
	}
}

// ErrRelationMissing marks a NotFound caused by a table or schema that does
// not exist yet. Read paths degrade to an empty result on it.
var ErrRelationMissing = errors.New("relation does not exist")

// ErrRowNotFound marks a NotFound caused by a lookup that matched no row.
var ErrRowNotFound = errors.New("row not found")

// Error is the tagged error returned across the data-access boundary.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + ": " + e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

func Validationf(op, format string, args ...any) *Error {
	return &Error{Kind: Validation, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func NotFoundf(op, format string, args ...any) *Error {
	return &Error{Kind: NotFound, Op: op, Msg: fmt.Sprintf(format, args...), Err: ErrRowNotFound}
}

// Classify tags a raw error. Already-classified errors pass through
// unchanged, nil stays nil.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, sql.ErrNoRows) {
		return &Error{Kind: NotFound, Op: op, Err: fmt.Errorf("%w: %w", ErrRowNotFound, err)}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "42P01" || pgErr.Code == "3F000":
			return &Error{Kind: NotFound, Op: op, Msg: pgErr.Message, Err: fmt.Errorf("%w: %w", ErrRelationMissing, err)}
		case strings.HasPrefix(pgErr.Code, "22") || strings.HasPrefix(pgErr.Code, "23"):
			return &Error{Kind: Validation, Op: op, Msg: pgErr.Message, Err: err}
		}
	}

	return &Error{Kind: Unknown, Op: op, Err: err}
}

func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Unknown
}

func IsNotFound(err error) bool {
	return err != nil && KindOf(err) == NotFound
}

func IsValidation(err error) bool {
	return err != nil && KindOf(err) == Validation
}

func IsRelationMissing(err error) bool {
	return errors.Is(err, ErrRelationMissing)
}

// Message returns the text that is safe to show an operator. Unknown errors
// get a generic message; the details belong in the log.
func Message(err error) string {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return "something went wrong, please try again"
	}
	switch appErr.Kind {
	case Validation:
		if appErr.Msg != "" {
			return appErr.Msg
		}
		return "invalid request"
	case NotFound:
		if appErr.Msg != "" && !IsRelationMissing(err) {
			return appErr.Msg
		}
		return "not found"
	default:
		return "something went wrong, please try again"
	}
}

// Prefix puts prefix in front of the user-facing message of err, keeping
// its kind.
func Prefix(prefix string, err error) error {
	var appErr *Error
	if err == nil || !errors.As(err, &appErr) {
		if err == nil {
			return nil
		}
		return fmt.Errorf("%s: %w", prefix, err)
	}
	cp := *appErr
	cp.Msg = prefix + ": " + Message(err)
	return &cp
}
