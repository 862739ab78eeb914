// Package apperrors はHTTPレスポンスに変換されるドメインエラーを定義します。
package apperrors

import (
	"errors"
	"net/http"
)

// FieldError はバリデーションに失敗したフィールド1件分の情報です。
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AppError はステータスコードとクライアント向けメッセージを持つエラーです。
// JSONにそのままシリアライズされてレスポンスボディになります。
type AppError struct {
	Status  int          `json:"status"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`

	// Cause はログ用の元エラーで、クライアントには返しません。
	Cause error `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Cause }

// New は任意のステータスでAppErrorを作成します。
func New(status int, message string) *AppError {
	return &AppError{Status: status, Message: message}
}

// Validation は400エラーを作成します。fieldsは空でも構いません。
func Validation(message string, fields ...FieldError) *AppError {
	return &AppError{Status: http.StatusBadRequest, Message: message, Errors: fields}
}

func Unauthorized(message string) *AppError {
	return New(http.StatusUnauthorized, message)
}

func NotFound(message string) *AppError {
	return New(http.StatusNotFound, message)
}

func Conflict(message string) *AppError {
	return New(http.StatusConflict, message)
}

// InternalMessage は500レスポンスで返す固定メッセージです。
const InternalMessage = "Internal server error"

// Internal は内部情報を含まない500エラーを作成します。causeはログにのみ残ります。
func Internal(cause error) *AppError {
	return &AppError{Status: http.StatusInternalServerError, Message: InternalMessage, Cause: cause}
}

// From は任意のエラーをAppErrorに変換します。AppErrorでなければ500として扱います。
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
