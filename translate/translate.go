// Package translate formats user-visible messages for the current locale.
package translate

import (
	"fmt"
	"io"
	"log"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/message"
)

var printer *message.Printer

func init() {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("mighf: locale: %v", err)
	}

	if len(locales) == 0 {
		locales = []string{"en-US"}
	}

	printer = message.NewPrinter(message.MatchLanguage(locales...))
}

// From an en-US Sprintf() format, translate to string.
// Numeric arguments are grouped by locale; pass counts and addresses as
// strings when they must print plainly.
func From(key message.Reference, args ...any) string {
	return printer.Sprintf(key, args...)
}

// Fprintln writes a translated message and a newline to w.
func Fprintln(w io.Writer, key message.Reference, args ...any) {
	fmt.Fprintln(w, printer.Sprintf(key, args...))
}
