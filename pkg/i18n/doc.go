// Package i18n provides translation catalogues for formkit messages.
//
// Catalogues are loaded through an Adapter (MapAdapter, FileAdapter,
// FSAdapter) from YAML or JSON files whose top-level keys are language codes:
//
//	en:
//	  validation:
//	    short: "Entry must be at least %{chars} characters long"
//	de:
//	  validation:
//	    short: "Mindestens %{chars} Zeichen"
//
// Translator implements validation.Translator, so it plugs straight into
// validation.TranslatorFormatter. Matcher negotiates the request language
// from Accept-Language using golang.org/x/text/language, and Middleware
// stores the result in the request context.
package i18n
