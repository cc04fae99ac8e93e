package handlers

import "net/http"

// getParam reads a named route parameter. pat exposes path parameters through
// the query string under a ":name" key; a plain query value and the net/http
// PathValue API are accepted as fallbacks.
func getParam(r *http.Request, name string) string {
	if r == nil {
		return ""
	}
	if v := r.URL.Query().Get(":" + name); v != "" {
		return v
	}
	if v := r.URL.Query().Get(name); v != "" {
		return v
	}
	return r.PathValue(name)
}
