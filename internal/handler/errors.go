package handler

import (
	"context"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/grocer-kart/internal/domain/address"
	"github.com/xenking/grocer-kart/internal/domain/auth"
	"github.com/xenking/grocer-kart/internal/domain/banner"
	"github.com/xenking/grocer-kart/internal/domain/cart"
	"github.com/xenking/grocer-kart/internal/domain/catalog"
	"github.com/xenking/grocer-kart/internal/domain/coupon"
	"github.com/xenking/grocer-kart/internal/domain/media"
	"github.com/xenking/grocer-kart/internal/domain/order"
	"github.com/xenking/grocer-kart/internal/domain/pricing"
	"github.com/xenking/grocer-kart/internal/domain/user"
	"github.com/xenking/grocer-kart/internal/domain/validation"
)

// badRequestError reports a malformed request body or parameter.
type badRequestError struct {
	msg string
}

func (e *badRequestError) Error() string { return e.msg }

func badRequest(msg string) error {
	return &badRequestError{msg: msg}
}

var (
	notFoundErrors = []error{
		user.ErrNotFound,
		address.ErrNotFound,
		catalog.ErrCategoryNotFound,
		catalog.ErrProductNotFound,
		catalog.ErrVariantNotFound,
		cart.ErrLineNotFound,
		order.ErrNotFound,
		coupon.ErrOfferNotFound,
		banner.ErrNotFound,
	}
	conflictErrors = []error{
		user.ErrMobileTaken,
		user.ErrHasOrders,
		address.ErrLimitReached,
		address.ErrInUse,
		catalog.ErrDuplicateName,
		catalog.ErrInUse,
		order.ErrDuplicateOrder,
		coupon.ErrDuplicateCode,
	}
	badRequestErrors = []error{
		media.ErrInvalidImage,
		pricing.ErrInvalidSetting,
	}
	unauthorizedErrors = []error{
		user.ErrInvalidCredentials,
		auth.ErrUnauthorized,
	}
)

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// statusOf maps a domain error to its HTTP status and client message.
func statusOf(err error) (int, string) {
	var (
		vErr     *validation.Error
		offerErr *coupon.InvalidOfferError
		reqErr   *badRequestError
		cErr     *order.InvalidCouponError
	)
	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest, vErr.Error()
	case errors.As(err, &offerErr):
		return http.StatusBadRequest, offerErr.Error()
	case errors.As(err, &reqErr):
		return http.StatusBadRequest, reqErr.Error()
	case errors.As(err, &cErr):
		return http.StatusUnprocessableEntity, cErr.Message
	case isAny(err, badRequestErrors):
		return http.StatusBadRequest, rootMessage(err, badRequestErrors)
	case isAny(err, notFoundErrors):
		return http.StatusNotFound, rootMessage(err, notFoundErrors)
	case isAny(err, conflictErrors):
		return http.StatusConflict, rootMessage(err, conflictErrors)
	case isAny(err, unauthorizedErrors):
		return http.StatusUnauthorized, "invalid credentials"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// rootMessage returns the text of the sentinel in targets that err wraps,
// without the wrapping context.
func rootMessage(err error, targets []error) string {
	for _, t := range targets {
		if errors.Is(err, t) {
			return t.Error()
		}
	}
	return err.Error()
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status, msg := statusOf(err)
	if status == http.StatusInternalServerError {
		zctx.From(ctx).Error("Request failed", zap.Error(err))
	} else {
		zctx.From(ctx).Debug("Request rejected", zap.Int("status", status), zap.Error(err))
	}
	writeErrorBody(w, status, msg)
}

func writeErrorBody(w http.ResponseWriter, status int, msg string) {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("code", func(e *jx.Encoder) { e.Int(status) })
		e.Field("message", func(e *jx.Encoder) { e.Str(msg) })
	})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}
