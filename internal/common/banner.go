package common

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ternarybob/banner"
)

// PrintBanner writes the CLI header: version, target API and session user.
func PrintBanner(w io.Writer, config *Config, session *Session) {
	lineColor := banner.ColorCyan
	textColor := banner.ColorBold + banner.ColorWhite
	width := 60
	hr := lineColor + strings.Repeat("═", width) + banner.ColorReset

	user := "anonymous"
	if session.Authenticated() {
		user = "token"
		if session.UserID != "" {
			user = session.UserID
		}
		if session.Expired(time.Now()) {
			user += " (expired)"
		}
	}

	fmt.Fprintf(w, "%s\n", hr)
	fmt.Fprintf(w, "%s  FOLIO  Portfolio Tracker%s\n", textColor, banner.ColorReset)
	fmt.Fprintf(w, "%s\n", hr)

	kvPad := 12
	kvLines := [][2]string{
		{"Version", GetFullVersion()},
		{"API", config.API.BaseURL},
		{"User", user},
	}
	for _, kv := range kvLines {
		fmt.Fprintf(w, "%s  %-*s %s%s\n", textColor, kvPad, kv[0], kv[1], banner.ColorReset)
	}
	fmt.Fprintf(w, "%s\n\n", hr)
}
