// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"
	"strings"

	"github.com/dalemusser/visitdesk/internal/app/system/authz"
	"github.com/dalemusser/visitdesk/internal/app/system/flash"
	"github.com/dalemusser/visitdesk/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
)

// NavItem is one entry in the side navigation.
type NavItem struct {
	Label  string
	Path   string
	Active bool
}

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
//
//	data := myPageData{
//	    BaseVM: viewdata.NewBaseVM(w, r, "Page Title", "/default-back"),
//	}
type BaseVM struct {
	SiteName string

	// User context (from auth middleware)
	IsLoggedIn bool
	Role       models.Role
	RoleLabel  string
	UserName   string

	// Capabilities of the role, evaluated once per render.
	Caps authz.Set
	Nav  []NavItem

	// Page context
	Title       string
	BackURL     string
	CurrentPath string

	// CSRF protection
	CSRFToken string

	// Toasts queued by the previous request.
	Toasts []flash.Toast
}

var (
	siteName = models.DefaultSiteName
	toasts   *flash.Flash
)

// Init sets the site name and the toast store.
// Call this once at startup from bootstrap.
func Init(name string, f *flash.Flash) {
	if strings.TrimSpace(name) != "" {
		siteName = name
	}
	toasts = f
}

// NewBaseVM creates a fully populated BaseVM for a page. It pops any
// queued toasts, so call it once per full-page render.
func NewBaseVM(w http.ResponseWriter, r *http.Request, title, backDefault string) BaseVM {
	role, name, _, signedIn := authz.UserCtx(r)

	vm := BaseVM{
		SiteName:    siteName,
		IsLoggedIn:  signedIn,
		Role:        role,
		RoleLabel:   role.Label(),
		UserName:    name,
		Caps:        authz.Caps(r),
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: httpnav.CurrentPath(r),
		CSRFToken:   csrf.Token(r),
	}

	if signedIn {
		for _, s := range authz.ScreensFor(role) {
			vm.Nav = append(vm.Nav, NavItem{
				Label:  s.Label,
				Path:   s.Path,
				Active: vm.CurrentPath == s.Path || strings.HasPrefix(vm.CurrentPath, s.Path+"/"),
			})
		}
	}

	if toasts != nil && w != nil {
		vm.Toasts = toasts.Pop(w, r)
	}
	return vm
}
