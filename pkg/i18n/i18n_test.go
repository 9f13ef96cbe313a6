package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUniversalTranslator(t *testing.T) {
	uni, err := NewUniversalTranslator(Catalog{
		"en": {"greeting": "Hello"},
		"zh": {"greeting": "你好"},
	})
	require.NoError(t, err)

	enTrans, _ := uni.GetTranslator("en")
	zhTrans, _ := uni.GetTranslator("zh")

	assert.Equal(t, "Hello", For(enTrans)("greeting"))
	assert.Equal(t, "你好", For(zhTrans)("greeting"))
	assert.Equal(t, "missing.key", For(enTrans)("missing.key"))
	assert.Equal(t, "greeting", For(nil)("greeting"))
}

func TestNewUniversalTranslatorUnknownLocale(t *testing.T) {
	_, err := NewUniversalTranslator(Catalog{"fr": {"greeting": "Bonjour"}})
	assert.Error(t, err)
}
