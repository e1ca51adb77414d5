// Package i18n translates the command-line messages of stringsync.
//
// Catalogs are gettext .po files embedded in the binary and read with
// gotext. Call Init once at startup, then T and N:
//
//	import "github.com/minios-linux/stringsync/i18n"
//
//	func main() {
//	    i18n.Init("") // language from LANGUAGE/LC_ALL/LC_MESSAGES/LANG
//	    log.Info().Msg(i18n.T("Matched strings"))
//	    log.Info().Msgf(i18n.N("%d string written", "%d strings written", n), n)
//	}
package i18n

import (
	"embed"
	"os"
	"strings"

	"github.com/leonelquinteros/gotext"
)

// Directory structure: locales/{lang}/LC_MESSAGES/stringsync.po
//
//go:embed all:locales
var locales embed.FS

const domain = "stringsync"

// po is the gotext locale object used for translations.
var po *gotext.Locale

// Init loads the catalog for lang, or for the language named by the
// environment when lang is empty. Unknown languages leave messages
// untranslated.
func Init(lang string) {
	if lang == "" {
		lang = detectLanguage()
	}

	po = gotext.NewLocaleFSWithPath(lang, locales, "locales")
	po.AddDomain(domain)
	po.SetDomain(domain)
}

// T returns the translation of msgid, or msgid itself.
func T(msgid string) string {
	if po == nil {
		return msgid
	}
	return po.Get(msgid)
}

// N is the plural form of T.
func N(singular, plural string, n int) string {
	if po == nil {
		if n == 1 {
			return singular
		}
		return plural
	}
	return po.GetN(singular, plural, n)
}

// detectLanguage picks the language the way GNU gettext does:
// LANGUAGE, then LC_ALL, LC_MESSAGES and LANG.
func detectLanguage() string {
	for _, env := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		if val := os.Getenv(env); val != "" {
			// LANGUAGE is a colon-separated list
			if env == "LANGUAGE" {
				parts := strings.SplitN(val, ":", 2)
				val = parts[0]
			}
			// "ru_RU.UTF-8" -> "ru_RU"
			if idx := strings.IndexByte(val, '.'); idx >= 0 {
				val = val[:idx]
			}
			if val == "C" || val == "POSIX" || val == "" {
				continue
			}
			return val
		}
	}
	return "en"
}
