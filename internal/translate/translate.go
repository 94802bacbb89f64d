// Package translate formats user-facing report lines for the host locale.
package translate

import (
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/jeandeaual/go-locale"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	mu      sync.RWMutex
	printer *message.Printer
)

func init() {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("chip8: locale: %v", err)
	}

	if len(locales) == 0 {
		locales = []string{"en-US"}
	}

	printer = message.NewPrinter(message.MatchLanguage(locales...))
}

// SetLanguage overrides the detected locale.
func SetLanguage(tag language.Tag) {
	mu.Lock()
	defer mu.Unlock()
	printer = message.NewPrinter(tag)
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	mu.RLock()
	defer mu.RUnlock()
	return printer.Sprintf(key, args...)
}

// Fprintln writes a translated line to w.
func Fprintln(w io.Writer, key message.Reference, args ...any) error {
	_, err := fmt.Fprintln(w, From(key, args...))
	return err
}
