// Package validator wires go-playground/validator into gin binding with en and zh messages
package validator

import (
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/pkg/errors"
)

// CustomValidator gin 参数验证器
type CustomValidator struct {
	once     sync.Once
	Validate *validator.Validate
}

var _ binding.StructValidator = (*CustomValidator)(nil)

func NewCustomValidator() *CustomValidator {
	return &CustomValidator{}
}

// ValidateStruct validates structs and pointers to structs; other values pass
func (v *CustomValidator) ValidateStruct(obj any) error {
	if kindOfData(obj) != reflect.Struct {
		return nil
	}
	v.lazyinit()
	return v.Validate.Struct(obj)
}

func (v *CustomValidator) Engine() any {
	v.lazyinit()
	return v.Validate
}

func (v *CustomValidator) lazyinit() {
	v.once.Do(func() {
		v.Validate = validator.New(validator.WithRequiredStructEnabled())
		v.Validate.SetTagName("binding")
		v.Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

func kindOfData(data any) reflect.Kind {
	value := reflect.ValueOf(data)
	valueType := value.Kind()
	if valueType == reflect.Ptr {
		valueType = value.Elem().Kind()
	}
	return valueType
}

// Init installs the validator as gin's binding validator, registers the custom
// tags and loads the en and zh messages into uni
// Init 安装 gin 参数验证器，注册自定义标签并加载中英文错误消息
func Init(uni *ut.UniversalTranslator) (*CustomValidator, error) {
	v := NewCustomValidator()
	validate := v.Engine().(*validator.Validate)

	if err := RegisterCustom(validate); err != nil {
		return nil, err
	}

	enTrans, _ := uni.GetTranslator("en")
	zhTrans, _ := uni.GetTranslator("zh")
	if err := en_translations.RegisterDefaultTranslations(validate, enTrans); err != nil {
		return nil, errors.Wrap(err, "register en translations")
	}
	if err := zh_translations.RegisterDefaultTranslations(validate, zhTrans); err != nil {
		return nil, errors.Wrap(err, "register zh translations")
	}
	if err := registerCustomTranslations(validate, enTrans, zhTrans); err != nil {
		return nil, err
	}

	binding.Validator = v
	return v, nil
}
