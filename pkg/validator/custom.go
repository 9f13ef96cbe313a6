package validator

import (
	"github.com/haierkeys/link-editor-service/internal/domain"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// TagLinkOption accepts the name of a link option
const TagLinkOption = "link_option"

// RegisterCustom 注册自定义验证标签
func RegisterCustom(validate *validator.Validate) error {
	err := validate.RegisterValidation(TagLinkOption, func(fl validator.FieldLevel) bool {
		return domain.LinkOption(fl.Field().String()).IsValid()
	})
	return errors.Wrapf(err, "register %s", TagLinkOption)
}

func registerCustomTranslations(validate *validator.Validate, enTrans, zhTrans ut.Translator) error {
	messages := []struct {
		trans ut.Translator
		text  string
	}{
		{enTrans, "{0} must be one of anchor, title, targetBlank, relNofollow"},
		{zhTrans, "{0}必须是 anchor、title、targetBlank、relNofollow 之一"},
	}
	for _, m := range messages {
		trans, text := m.trans, m.text
		err := validate.RegisterTranslation(TagLinkOption, trans,
			func(ut ut.Translator) error {
				return ut.Add(TagLinkOption, text, true)
			},
			func(ut ut.Translator, fe validator.FieldError) string {
				msg, err := ut.T(TagLinkOption, fe.Field())
				if err != nil {
					return fe.Error()
				}
				return msg
			},
		)
		if err != nil {
			return errors.Wrapf(err, "register %s translation", TagLinkOption)
		}
	}
	return nil
}
