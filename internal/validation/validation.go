// Package validation はルートごとのリクエストボディ検証を行うGinミドルウェアを提供します。
//
// ルールはリクエスト構造体のタグで宣言します。
//
//	binding:"required,notblank"  validatorのルール
//	sanitize:"trim"              検証前に前後の空白を取り除く
//	msg:"Name is required"       検証失敗時にクライアントへ返すメッセージ
//	msg_max:"Name is too long"   特定のルール (ここではmax) が失敗したときだけ使うメッセージ
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"go-checklist/backend/internal/apperrors"
)

const bodyKey = "validated_body"

// InvalidPayloadMessage はJSONとして読めないボディに対するメッセージです。
const InvalidPayloadMessage = "Invalid request payload"

var registerOnce sync.Once

// Register はGinのvalidatorにカスタムルールとJSON名でのフィールド表示を登録します。
// 何度呼んでも一度だけ実行されます。
func Register() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			switch name {
			case "-":
				return ""
			case "":
				return f.Name
			}
			return name
		})
		if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
			panic(fmt.Sprintf("validation: register notblank: %v", err))
		}
	})
}

// Body はJSONボディをTにデコードし、サニタイズと検証を行うミドルウェアを返します。
// 失敗した場合はハンドラーを実行せずに400エラーを積んで中断します。
func Body[T any]() gin.HandlerFunc {
	Register()
	return func(c *gin.Context) {
		body := new(T)
		if err := decode(c.Request.Body, body); err != nil {
			_ = c.Error(apperrors.Validation(InvalidPayloadMessage))
			c.Abort()
			return
		}
		sanitize(body)
		if err := binding.Validator.ValidateStruct(body); err != nil {
			_ = c.Error(translate(err, reflect.TypeOf(body).Elem()))
			c.Abort()
			return
		}
		c.Set(bodyKey, body)
		c.Next()
	}
}

// BodyFrom はBodyミドルウェアが検証済みのボディを取り出します。
func BodyFrom[T any](c *gin.Context) (*T, bool) {
	v, exists := c.Get(bodyKey)
	if !exists {
		return nil, false
	}
	body, ok := v.(*T)
	return body, ok
}

// 空のボディは空オブジェクトとして扱い、必須チェックで弾く。
func decode(r io.Reader, dst any) error {
	if r == nil {
		return nil
	}
	err := json.NewDecoder(r).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func sanitize(ptr any) {
	v := reflect.ValueOf(ptr).Elem()
	if v.Kind() != reflect.Struct {
		return
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Tag.Get("sanitize") != "trim" || f.Type.Kind() != reflect.String {
			continue
		}
		fv := v.Field(i)
		if fv.CanSet() {
			fv.SetString(strings.TrimSpace(fv.String()))
		}
	}
}

func translate(err error, t reflect.Type) *apperrors.AppError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.Validation(InvalidPayloadMessage)
	}

	fields := make([]apperrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperrors.FieldError{
			Field:   fe.Field(),
			Message: messageFor(fe, t),
		})
	}
	return apperrors.Validation(fields[0].Message, fields...)
}

func messageFor(fe validator.FieldError, t reflect.Type) string {
	if t.Kind() == reflect.Struct {
		if sf, ok := t.FieldByName(fe.StructField()); ok {
			if msg := sf.Tag.Get("msg_" + fe.Tag()); msg != "" {
				return msg
			}
			if msg := sf.Tag.Get("msg"); msg != "" {
				return msg
			}
		}
	}
	switch fe.Tag() {
	case "required", "notblank":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	}
	return fe.Field() + " is invalid"
}
