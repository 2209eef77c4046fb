// Package builtin provides the default local tools.
package builtin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bobmcallan/apichat/internal/tools"
)

// Register adds all builtin tools to r.
func Register(r *tools.Registry) error {
	for name, fn := range map[string]tools.Func{
		"current_time": CurrentTime(time.Now),
		"word_count":   WordCount,
	} {
		if err := r.Register(name, fn); err != nil {
			return err
		}
	}
	return nil
}

// CurrentTime returns a tool reporting the time. The query may name an IANA
// zone ("Europe/Paris"); anything else reports local time.
func CurrentTime(now func() time.Time) tools.Func {
	return func(_ context.Context, query string) (string, error) {
		t := now()
		zone := strings.TrimSpace(query)
		if zone != "" {
			if loc, err := time.LoadLocation(zone); err == nil {
				t = t.In(loc)
			}
		}
		return t.Format("Monday, 02 January 2006 15:04:05 MST"), nil
	}
}

// WordCount counts whitespace-separated words in the query.
func WordCount(_ context.Context, query string) (string, error) {
	n := len(strings.Fields(query))
	if n == 1 {
		return "1 word", nil
	}
	return fmt.Sprintf("%d words", n), nil
}
