package validation

// Translator looks up localised messages. *i18n.Translator satisfies it.
type Translator interface {
	T(lang, key string, args ...string) string
	HasTranslation(lang, key string) bool
}

// TranslatorFormatter returns a Formatter that localises messages for lang.
//
// A message that is itself a translation key is translated directly. Otherwise
// the key prefix + "." + slot (for example "validation.short") is tried, and
// the message is returned unchanged when neither exists. Params are passed to
// the translator as %{name} placeholders.
func TranslatorFormatter(t Translator, lang, prefix string) Formatter {
	return func(message string, params Params) string {
		if t == nil {
			return message
		}

		args := params.Args()
		if message != "" && t.HasTranslation(lang, message) {
			return t.T(lang, message, args...)
		}

		if prefix != "" {
			if slot, ok := params[ParamMessage].(string); ok && slot != "" {
				key := prefix + "." + slot
				if t.HasTranslation(lang, key) {
					return t.T(lang, key, args...)
				}
			}
		}

		return message
	}
}
