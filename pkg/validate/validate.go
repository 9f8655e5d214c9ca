// Package validate 在 gin 默认校验引擎上注册自定义标签与中文错误翻译。
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
)

var (
	once     sync.Once
	setupErr error
	trans    ut.Translator
)

// Setup 注册 hhmm / isodate 标签与中文翻译，可重复调用
func Setup() error {
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			setupErr = errors.New("gin 校验引擎不是 validator/v10")
			return
		}
		setupErr = register(v)
	})
	return setupErr
}

func register(v *validator.Validate) error {
	zhLocale := zh.New()
	uni := ut.New(zhLocale, zhLocale)
	trans, _ = uni.GetTranslator("zh")

	if err := zh_translations.RegisterDefaultTranslations(v, trans); err != nil {
		return fmt.Errorf("注册中文翻译失败: %w", err)
	}

	// 错误信息中使用 json 字段名
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	custom := []struct {
		tag     string
		fn      validator.Func
		message string
	}{
		{"hhmm", validateHHMM, "{0}必须是 HH:MM 格式的时间"},
		{"isodate", validateISODate, "{0}必须是 YYYY-MM-DD 格式的日期"},
	}
	for _, c := range custom {
		if err := v.RegisterValidation(c.tag, c.fn); err != nil {
			return fmt.Errorf("注册校验标签 %s 失败: %w", c.tag, err)
		}
		msg := c.message
		tag := c.tag
		err := v.RegisterTranslation(tag, trans,
			func(ut ut.Translator) error { return ut.Add(tag, msg, true) },
			func(ut ut.Translator, fe validator.FieldError) string {
				t, _ := ut.T(tag, fe.Field())
				return t
			},
		)
		if err != nil {
			return fmt.Errorf("注册标签 %s 翻译失败: %w", tag, err)
		}
	}
	return nil
}

// IsHHMM 判断字符串是否为合法的 24 小时制 HH:MM
func IsHHMM(s string) bool {
	if len(s) != 5 {
		return false
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}

// IsISODate 判断字符串是否为合法的 YYYY-MM-DD 日期
func IsISODate(s string) bool {
	if len(s) != 10 {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

func validateHHMM(fl validator.FieldLevel) bool {
	return IsHHMM(fl.Field().String())
}

func validateISODate(fl validator.FieldLevel) bool {
	return IsISODate(fl.Field().String())
}

// Translate 将绑定错误转换为中文说明；非校验错误返回空串
func Translate(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return ""
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if trans != nil {
			msgs = append(msgs, fe.Translate(trans))
		} else {
			msgs = append(msgs, fe.Error())
		}
	}
	sort.Strings(msgs)
	return strings.Join(msgs, "; ")
}
