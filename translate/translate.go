// Package translate formats user visible messages for the current locale.
package translate

import (
	"log"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DEFAULT_LOCALE is used when the host reports no locale.
const DEFAULT_LOCALE = "en-US"

var (
	current language.Tag
	printer *message.Printer
)

func init() {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("regvm: locale: %v", err)
	}

	SetLocale(locales...)
}

// SetLocale selects the best match among locales for all later messages.
func SetLocale(locales ...string) {
	if len(locales) == 0 {
		locales = []string{DEFAULT_LOCALE}
	}

	current = message.MatchLanguage(locales...)
	printer = message.NewPrinter(current)
}

// Language returns the language messages are formatted for.
func Language() language.Tag {
	return current
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return printer.Sprintf(key, args...)
}
