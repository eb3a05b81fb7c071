package usecase

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// handlerがそのままステータスとメッセージに変換するエラー
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 400 入力不正
func validationError(msg string) error { return NewHTTPError(http.StatusBadRequest, msg) }

// 404
func notFound(msg string) error { return NewHTTPError(http.StatusNotFound, msg) }

// 409 一意制約など
func conflict(msg string) error { return NewHTTPError(http.StatusConflict, msg) }

// 400 状態として受け付けられない（空カートの注文など）
func badRequest(msg string) error { return NewHTTPError(http.StatusBadRequest, msg) }

// 500 詳細はログにだけ出す
func internalError(log *zap.Logger, op string, err error) error {
	log.Error("internal error", zap.String("op", op), zap.Error(err))
	return NewHTTPError(http.StatusInternalServerError, "internal error")
}

// Tx内で返したHTTPErrorはそのまま、それ以外は500
func passOrInternal(log *zap.Logger, op string, err error) error {
	if _, ok := AsHTTPError(err); ok {
		return err
	}
	return internalError(log, op, err)
}
