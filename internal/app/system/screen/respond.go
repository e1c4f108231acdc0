package screen

import (
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dalemusser/visitdesk/internal/app/system/datatable"
	"github.com/dalemusser/visitdesk/internal/app/system/flash"
	"github.com/dalemusser/visitdesk/internal/app/system/formdialog"
	"github.com/dalemusser/visitdesk/internal/app/system/paging"
	"github.com/dalemusser/waffle/pantry/templates"
)

// DialogSlot is the DOM id every form dialog is swapped into.
const DialogSlot = "dialog-slot"

// Query is the page and search term a list request asks for.
type Query struct {
	Page   int
	Search string
}

// ParseQuery reads ?page= and ?q= from r. Bad or missing pages read as 1.
func ParseQuery(r *http.Request) Query {
	return Query{Page: paging.ParsePage(r), Search: strings.TrimSpace(r.URL.Query().Get("q"))}
}

// Encode renders q back into a query string, omitting defaults.
func (q Query) Encode() string {
	v := url.Values{}
	if q.Page > 1 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Search != "" {
		v.Set("q", q.Search)
	}
	return v.Encode()
}

// IsHTMX reports whether r came from an HTMX request.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// RenderTable writes the "data_table" snippet for v.
func RenderTable(w http.ResponseWriter, v datatable.View) {
	templates.RenderSnippet(w, "data_table", v)
}

// RenderDialog writes the "form_dialog" snippet into the dialog slot.
// Invalid submissions are answered with this and status 200 so HTMX swaps
// the errors in place.
func RenderDialog(w http.ResponseWriter, d formdialog.Dialog) {
	w.Header().Set("HX-Retarget", "#"+DialogSlot)
	w.Header().Set("HX-Reswap", "innerHTML")
	templates.RenderSnippet(w, "form_dialog", d.View())
}

type savedData struct {
	Table datatable.View
}

// Saved answers a successful create, update or delete: the refreshed table
// replaces the old one, the dialog slot is emptied out of band, and msg
// shows as a success toast.
func Saved(w http.ResponseWriter, v datatable.View, msg string) {
	if msg != "" {
		flash.Trigger(w, flash.Toast{Kind: flash.Success, Message: msg})
	}
	w.Header().Set("HX-Retarget", "#"+v.ID)
	w.Header().Set("HX-Reswap", "outerHTML")
	templates.RenderSnippet(w, "table_saved", savedData{Table: v})
}

// Failed answers a backend rejection. The message shows as an error toast
// and nothing on the page is swapped, so the open dialog and the table
// keep their state.
func Failed(w http.ResponseWriter, msg string) {
	flash.Trigger(w, flash.Toast{Kind: flash.Error, Message: msg})
	w.Header().Set("HX-Reswap", "none")
	w.WriteHeader(http.StatusOK)
}

// CellLink renders an escaped anchor, or the escaped text when href is empty.
func CellLink(href, text string) template.HTML {
	t := template.HTMLEscapeString(text)
	if href == "" {
		return template.HTML(t)
	}
	return template.HTML(`<a href="` + template.HTMLEscapeString(href) + `" target="_blank" rel="noopener">` + t + `</a>`)
}
