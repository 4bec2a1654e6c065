package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_LanguageMatching(t *testing.T) {
	assert.Equal(t, "ja", New("ja").Lang())
	assert.Equal(t, "ja", New("ja-JP").Lang(), "Региональный вариант сводится к базовому языку")
	assert.Equal(t, "en", New("en-GB").Lang())
	assert.Equal(t, "en", New("fr").Lang(), "Неподдерживаемый язык - английский")
	assert.Equal(t, "en", New("").Lang())
	assert.True(t, New("ja").IsJapanese())
}

func TestText_Fallback(t *testing.T) {
	ja := New("ja")
	assert.Equal(t, "セッション活動量", ja.Text(KeySessionStats))
	assert.Equal(t, "小麦", ja.Text("wheat"))
	assert.Equal(t, "no_such_key", ja.Text("no_such_key"), "Неизвестный ключ возвращается как есть")

	en := New("en")
	assert.Equal(t, "Blocks Broken", en.Text(KeyBlocksBroken))
	assert.Equal(t, "mangrove propagule", en.Text("mangrove_propagule"))
}

func TestText_JapaneseFallsBackToEnglish(t *testing.T) {
	texts["en"]["onlyEnglish"] = "english only"
	defer delete(texts["en"], "onlyEnglish")

	assert.Equal(t, "english only", New("ja").Text("onlyEnglish"))
}
