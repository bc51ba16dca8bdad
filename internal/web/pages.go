package web

import (
	"net/url"
	"strings"
)

// PageURL maps a logical page name to its route: "" and "home" go to "/",
// anything else is lower-cased with whitespace runs turned into "-".
func PageURL(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "home" {
		return "/"
	}
	return "/" + url.PathEscape(strings.Join(strings.Fields(name), "-"))
}
