package localization_test

import (
	"testing"

	"anonchat/backend/internal/localization"

	"github.com/stretchr/testify/assert"
)

func TestGetString_KnownKey(t *testing.T) {
	loc, err := localization.NewLocalizer()
	assert.NoError(t, err)

	assert.Equal(t, "🚫 You are banned.", loc.GetString("en", "banned"))
	assert.Equal(t, "🚫 Вы заблокированы.", loc.GetString("ru", "banned"))
}

func TestGetString_FallsBackToEnglish(t *testing.T) {
	loc, err := localization.NewLocalizer()
	assert.NoError(t, err)

	assert.Equal(t, loc.GetString("en", "banned"), loc.GetString("de", "banned"))
}

func TestGetString_UnknownKeyIsVisible(t *testing.T) {
	loc, err := localization.NewLocalizer()
	assert.NoError(t, err)

	assert.Equal(t, "no_such_key", loc.GetString("en", "no_such_key"))
}

func TestGetStringf(t *testing.T) {
	loc, err := localization.NewLocalizer()
	assert.NoError(t, err)

	assert.Contains(t, loc.GetStringf("en", "name_changed", "Alice"), "Alice")
}

func TestLanguages(t *testing.T) {
	loc, err := localization.NewLocalizer()
	assert.NoError(t, err)

	langs := loc.Languages()
	assert.Contains(t, langs, "en")
	assert.Contains(t, langs, "ru")
}
