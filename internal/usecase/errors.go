package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

// レスポンスのcode
const (
	CodeNotFound          = "NOT_FOUND"
	CodeForbidden         = "FORBIDDEN"
	CodeCartConflict      = "CART_CONFLICT"
	CodeInvalidState      = "INVALID_STATE"
	CodeEmptyCart         = "EMPTY_CART"
	CodeInsufficientFunds = "INSUFFICIENT_FUNDS"
	CodeBadRequest        = "BAD_REQUEST"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeInternal          = "INTERNAL"
)

type HTTPError struct {
	Status  int
	Code    string
	Message string

	// CART_CONFLICTのとき既存カート
	ExistingCart *CartView
	// INSUFFICIENT_FUNDSのとき
	Required  int64
	Available int64

	// ログ用の元エラー（レスポンスには出さない）
	Err error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d: %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Code:    codeForStatus(status),
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusBadRequest:
		return CodeBadRequest
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusConflict:
		return CodeInvalidState
	case http.StatusUnprocessableEntity:
		return CodeEmptyCart
	case http.StatusPaymentRequired:
		return CodeInsufficientFunds
	default:
		return CodeInternal
	}
}

func errNotFound(what string) error {
	return &HTTPError{Status: http.StatusNotFound, Code: CodeNotFound, Message: what + " not found"}
}

func errForbidden() error {
	return &HTTPError{Status: http.StatusForbidden, Code: CodeForbidden, Message: "forbidden"}
}

func errBadRequest(msg string) error {
	return &HTTPError{Status: http.StatusBadRequest, Code: CodeBadRequest, Message: msg}
}

func errInvalidState(msg string) error {
	return &HTTPError{Status: http.StatusConflict, Code: CodeInvalidState, Message: msg}
}

func errEmptyCart() error {
	return &HTTPError{Status: http.StatusUnprocessableEntity, Code: CodeEmptyCart, Message: "cart is empty"}
}

func errCartConflict(existing CartView) error {
	return &HTTPError{
		Status:       http.StatusConflict,
		Code:         CodeCartConflict,
		Message:      "another store's cart is active",
		ExistingCart: &existing,
	}
}

func errInsufficientFunds(required, available int64) error {
	return &HTTPError{
		Status:    http.StatusPaymentRequired,
		Code:      CodeInsufficientFunds,
		Message:   "insufficient balance",
		Required:  required,
		Available: available,
	}
}

func errInternal(err error) error {
	return &HTTPError{Status: http.StatusInternalServerError, Code: CodeInternal, Message: "db error", Err: err}
}
