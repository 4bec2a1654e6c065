// Package i18n хранит таблицы текстов для сообщений игрокам.
package i18n

import (
	"golang.org/x/text/language"
)

var supported = []language.Tag{
	language.English, // запасной язык идёт первым
	language.Japanese,
}

var matcher = language.NewMatcher(supported)

// Translator возвращает тексты на выбранном языке
type Translator struct {
	lang string
	tag  language.Tag
}

// New выбирает ближайший поддерживаемый язык; неизвестные и пустые теги дают английский
func New(lang string) *Translator {
	tag, _, _ := matcher.Match(language.Make(lang))
	base, _ := tag.Base()
	code := base.String()
	if _, ok := texts[code]; !ok {
		code = "en"
	}
	return &Translator{lang: code, tag: tag}
}

// Lang возвращает код выбранного языка ("en", "ja")
func (t *Translator) Lang() string { return t.lang }

// IsJapanese сообщает, нужен ли японский порядок слов в сообщениях
func (t *Translator) IsJapanese() bool { return t.lang == "ja" }

// Text возвращает текст по ключу: выбранный язык, затем английский, затем сам ключ
func (t *Translator) Text(key string) string {
	if s, ok := texts[t.lang][key]; ok && s != "" {
		return s
	}
	if s, ok := texts["en"][key]; ok && s != "" {
		return s
	}
	return key
}
