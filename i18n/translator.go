package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// Translator retrieves localized messages for warning kinds and error codes.
// data provides optional values to embed in the message (for example,
// "detail" or "rounds").
type Translator interface {
	Message(code string, data map[string]string) string
}

var (
	supported = []language.Tag{language.English, language.Japanese}
	matcher   = language.NewMatcher(supported)
)

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang language.Tag }

var messages = map[language.Tag]map[string]string{
	language.English: {
		"skipped-choice":             "skipped a union choice: {detail}",
		"non-serializable-default":   "excluded a default from the schema: {detail}",
		"invalid-for-json-schema":    "cannot generate a JSON Schema for {detail}",
		"json-schema-already-used":   "this generator has already been used to generate a JSON schema; create a new instance",
		"json-schema-extra-conflict": "json_schema_extra cannot be set on both the root field and the model config",
		"failed-to-simplify":         "failed to simplify the definitions after {rounds} rounds",
		"unknown-handler-type":       "handler override for unknown node type {type}",
		"missing-handler":            "no handler for node type {type}",
		"dangling-reference":         "reference {ref} has no definition",
	},
	language.Japanese: {
		"skipped-choice":             "ユニオンの選択肢をスキップしました: {detail}",
		"non-serializable-default":   "デフォルト値をスキーマから除外しました: {detail}",
		"invalid-for-json-schema":    "{detail} の JSON Schema を生成できません",
		"json-schema-already-used":   "このジェネレータは使用済みです。新しいインスタンスを作成してください",
		"json-schema-extra-conflict": "json_schema_extra をルートフィールドとモデル設定の両方に指定することはできません",
		"failed-to-simplify":         "{rounds} 回の反復で定義名を単純化できませんでした",
		"unknown-handler-type":       "未知のノード型 {type} に対するハンドラ指定です",
		"missing-handler":            "ノード型 {type} のハンドラがありません",
		"dangling-reference":         "参照 {ref} に対応する定義がありません",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := messages[t.lang][code]
	if !ok {
		msg, ok = messages[language.English][code]
	}
	if !ok {
		return code
	}
	for k, v := range data {
		msg = strings.ReplaceAll(msg, "{"+k+"}", v)
	}
	return msg
}

// New returns the built-in Translator for the best match of lang
// (a BCP 47 tag or Accept-Language style list). Unknown languages fall back
// to English.
func New(lang string) Translator {
	tag, _ := language.MatchStrings(matcher, lang)
	base, _ := tag.Base()
	for _, s := range supported {
		if b, _ := s.Base(); b == base {
			return dictTranslator{lang: s}
		}
	}
	return dictTranslator{lang: language.English}
}

var currentTranslator Translator = dictTranslator{lang: language.English}

// SetLanguage switches the package-level Translator language.
func SetLanguage(lang string) { currentTranslator = New(lang) }

// SetTranslator replaces the package-level Translator (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: language.English}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the package-level Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }

// Languages lists the base language codes of the built-in dictionaries.
func Languages() []string {
	out := make([]string, 0, len(supported))
	for _, s := range supported {
		b, _ := s.Base()
		out = append(out, b.String())
	}
	return out
}
