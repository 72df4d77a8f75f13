package main

import (
	"fmt"
	"html"
	"net/http"
	"strings"

	"loginprobe/internal/endpoint"
)

const (
	cacheControlValue = "no-store, no-cache, must-revalidate, max-age=0"
	pragmaValue       = "no-cache"
	expiresValue      = "0"
)

func (a *app) handleConsole(w http.ResponseWriter, r *http.Request) {
	serveConsole(w, a.catalog.All(), a.sessions.SelectedEndpoint(r.Context()))
}

func serveConsole(w http.ResponseWriter, endpoints []endpoint.Endpoint, selected endpoint.Endpoint) {
	setNoCacheHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	var options strings.Builder
	for _, e := range endpoints {
		attr := ""
		if e.Value == selected.Value {
			attr = " selected"
		}
		fmt.Fprintf(&options, `<option value="%s"%s>%s</option>`,
			html.EscapeString(e.Value), attr, html.EscapeString(e.Label))
	}

	page := strings.NewReplacer(
		"{{ENDPOINT_OPTIONS}}", options.String(),
		"{{LOGIN_URL}}", html.EscapeString(selected.LoginURL()),
		"{{LOGIN_PATH}}", endpoint.LoginPath,
	).Replace(consoleHTML)
	fmt.Fprint(w, page)
}

func setNoCacheHeaders(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", cacheControlValue)
	w.Header().Set("Pragma", pragmaValue)
	w.Header().Set("Expires", expiresValue)
}
