package handler

import (
	"net/http"

	"wheats/internal/middleware"
	"wheats/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// 409 CART_CONFLICT
type CartConflictResponse struct {
	Error        string            `json:"error"`
	Code         string            `json:"code"`
	Message      string            `json:"message"`
	ExistingCart *usecase.CartView `json:"existing_cart"`
}

// 402 INSUFFICIENT_FUNDS
type InsufficientFundsResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Required  int64  `json:"required"`
	Available int64  `json:"available"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	he, ok := usecase.AsHTTPError(err)
	if !ok {
		//500
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error", Code: usecase.CodeInternal})
	}

	switch he.Code {
	case usecase.CodeCartConflict:
		return c.JSON(he.Status, CartConflictResponse{
			Error:        he.Message,
			Code:         he.Code,
			Message:      he.Message,
			ExistingCart: he.ExistingCart,
		})
	case usecase.CodeInsufficientFunds:
		return c.JSON(he.Status, InsufficientFundsResponse{
			Error:     he.Message,
			Code:      he.Code,
			Required:  he.Required,
			Available: he.Available,
		})
	}

	if he.Status >= http.StatusInternalServerError {
		// 内部の理由は出さない
		return c.JSON(he.Status, ErrorResponse{Error: "internal error", Code: he.Code})
	}
	return c.JSON(he.Status, ErrorResponse{Error: he.Message, Code: he.Code})
}

func getUserIDFromContext(c echo.Context) (int64, bool) {
	v := c.Get(middleware.CtxUserIDKey)
	if v == nil {
		return 0, false
	}

	id, ok := v.(int64)
	if !ok {
		return 0, false
	}

	return id, true
}
