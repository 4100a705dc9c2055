package interp

import (
	stderrors "errors"
	"strings"

	raerr "github.com/railwaylang/railway/internal/errors"
	"github.com/railwaylang/railway/internal/lexer"
	"github.com/railwaylang/railway/internal/types"
)

// wrapScopeErr classifies the plain errors returned by internal/runtime
// (which are not position-aware) into a positioned RailwayError, sniffing
// the kind off the message prefix those packages already use.
func wrapScopeErr(err error, pos lexer.Position) error {
	if err == nil {
		return nil
	}
	if re, ok := err.(*raerr.RailwayError); ok {
		return re
	}
	msg := err.Error()
	kind := raerr.KindMemAccess
	switch {
	case strings.HasPrefix(msg, "exists-error"):
		kind = raerr.KindExists
	case strings.HasPrefix(msg, "mem-access"):
		kind = raerr.KindMemAccess
	}
	return raerr.New(kind, pos, "%s", err)
}

// wrapValueErr classifies the sentinel errors internal/types returns from
// arithmetic into the matching RailwayError kind.
func wrapValueErr(err error, pos lexer.Position) error {
	if err == nil {
		return nil
	}
	switch {
	case stderrors.Is(err, types.ErrDivisionByZero):
		return raerr.New(raerr.KindDivisionByZero, pos, "%s", err)
	case stderrors.Is(err, types.ErrZeroMultiplication):
		return raerr.New(raerr.KindZeroMultiplication, pos, "%s", err)
	default:
		return raerr.New(raerr.KindMemAccess, pos, "%s", err)
	}
}
