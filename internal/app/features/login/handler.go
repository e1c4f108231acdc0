// internal/app/features/login/handler.go
package login

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	uierrors "github.com/dalemusser/visitdesk/internal/app/features/errors"
	"github.com/dalemusser/visitdesk/internal/app/gateway"
	loginstore "github.com/dalemusser/visitdesk/internal/app/store/logins"
	"github.com/dalemusser/visitdesk/internal/app/system/appstate"
	"github.com/dalemusser/visitdesk/internal/app/system/auditlog"
	"github.com/dalemusser/visitdesk/internal/app/system/auth"
	"github.com/dalemusser/visitdesk/internal/app/system/formdialog"
	"github.com/dalemusser/visitdesk/internal/app/system/ratelimit"
	"github.com/dalemusser/visitdesk/internal/app/system/timeouts"
	"github.com/dalemusser/visitdesk/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.uber.org/zap"
)

// ErrorPath is the sign-in failure page.
const ErrorPath = "/auth/error"

type Handler struct {
	API        *gateway.Client
	SessionMgr *auth.SessionManager
	States     *appstate.Registry
	Limiter    *ratelimit.OTPLimiter
	Logins     *loginstore.Store // optional
	AuditLog   *auditlog.Logger
	Log        *zap.Logger
}

func NewHandler(
	api *gateway.Client,
	sessionMgr *auth.SessionManager,
	states *appstate.Registry,
	limiter *ratelimit.OTPLimiter,
	logins *loginstore.Store,
	audit *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		API:        api,
		SessionMgr: sessionMgr,
		States:     states,
		Limiter:    limiter,
		Logins:     logins,
		AuditLog:   audit,
		Log:        logger,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type loginFormData struct {
	viewdata.BaseVM
	Step      string // "phone" or "otp"
	Phone     string
	Error     string
	Notice    string
	ReturnURL string
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, d loginFormData) {
	d.BaseVM = viewdata.NewBaseVM(w, r, "Sign in", "/")
	templates.Render(w, r, "login", d)
}

// normalizePhone keeps the digits of s and drops a leading 91 country code
// or trunk 0 from longer inputs.
func normalizePhone(s string) string {
	var b strings.Builder
	for _, c := range s {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	d := b.String()
	switch {
	case len(d) == 12 && strings.HasPrefix(d, "91"):
		d = d[2:]
	case len(d) == 11 && strings.HasPrefix(d, "0"):
		d = d[1:]
	}
	return d
}

func validPhone(phone string) bool {
	return formdialog.Validator().Var(phone, "required,phone10") == nil
}

func validOTP(otp string) bool {
	return formdialog.Validator().Var(otp, "required,len=6,digits") == nil
}

func authErrorURL(code string) string {
	return ErrorPath + "?error=" + url.QueryEscape(code)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/login                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	ret := query.Get(r, "return")
	if _, ok := auth.CurrentUser(r); ok {
		http.Redirect(w, r, urlutil.SafeReturn(ret, "", "/dashboard"), http.StatusSeeOther)
		return
	}
	d := loginFormData{Step: "phone", ReturnURL: ret}
	if query.Get(r, "expired") != "" {
		d.Notice = "Your session has expired. Please sign in again."
	}
	h.render(w, r, d)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /auth/login/otp                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleRequestOTP sends a one-time code to the submitted phone.
func (h *Handler) HandleRequestOTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, loginFormData{Step: "phone", Error: "Invalid form data."})
		return
	}
	ret := strings.TrimSpace(r.FormValue("return"))
	phone := normalizePhone(r.FormValue("phone"))

	if !validPhone(phone) {
		h.render(w, r, loginFormData{Step: "phone", Phone: phone, ReturnURL: ret,
			Error: "Enter your 10 digit mobile number."})
		return
	}

	if h.Limiter != nil {
		if ok, limitType, msg := h.Limiter.Check(r, phone); !ok {
			h.AuditLog.OTPRateLimited(r.Context(), r, phone, limitType)
			h.render(w, r, loginFormData{Step: "phone", Phone: phone, ReturnURL: ret, Error: msg})
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.API())
	defer cancel()

	if err := h.API.RequestOTP(ctx, phone); err != nil {
		h.AuditLog.OTPRequested(r.Context(), r, phone, false, string(gateway.KindOf(err)))
		switch gateway.KindOf(err) {
		case gateway.KindTransport:
			h.Log.Error("otp request: backend unreachable", zap.Error(err))
			http.Redirect(w, r, authErrorURL(uierrors.CodeConfiguration), http.StatusSeeOther)
		case gateway.KindForbidden:
			http.Redirect(w, r, authErrorURL(uierrors.CodeAccessDenied), http.StatusSeeOther)
		default:
			h.Log.Info("otp request refused", zap.Error(err))
			h.render(w, r, loginFormData{Step: "phone", Phone: phone, ReturnURL: ret,
				Error: gateway.UserMessage(err)})
		}
		return
	}

	h.AuditLog.OTPRequested(r.Context(), r, phone, true, "")
	h.render(w, r, loginFormData{Step: "otp", Phone: phone, ReturnURL: ret,
		Notice: "We sent a 6 digit code to your phone."})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /auth/login/verify                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleVerify exchanges phone and code for a session, loads the profile
// into the per-session state and redirects to the dashboard.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, loginFormData{Step: "phone", Error: "Invalid form data."})
		return
	}
	ret := strings.TrimSpace(r.FormValue("return"))
	phone := normalizePhone(r.FormValue("phone"))
	otp := strings.TrimSpace(r.FormValue("otp"))

	if !validPhone(phone) {
		h.render(w, r, loginFormData{Step: "phone", Phone: phone, ReturnURL: ret,
			Error: "Enter your 10 digit mobile number."})
		return
	}
	if !validOTP(otp) {
		h.render(w, r, loginFormData{Step: "otp", Phone: phone, ReturnURL: ret,
			Error: "Enter the 6 digit code we sent you."})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.API())
	defer cancel()

	sess, err := h.API.VerifyOTP(ctx, phone, otp)
	if err != nil {
		h.AuditLog.LoginFailed(r.Context(), r, phone, string(gateway.KindOf(err)))
		h.Log.Info("otp verification failed", zap.Error(err))
		http.Redirect(w, r, authErrorURL(verifyErrorCode(err)), http.StatusSeeOther)
		return
	}
	if !sess.Role.Known() {
		h.AuditLog.LoginFailed(r.Context(), r, phone, "unknown role")
		http.Redirect(w, r, authErrorURL(uierrors.CodeAccessDenied), http.StatusSeeOther)
		return
	}

	me, meErr := h.API.WithToken(sess.Token).Me(ctx)
	if meErr != nil {
		if gateway.IsUnauthorized(meErr) {
			h.AuditLog.LoginFailed(r.Context(), r, phone, "profile rejected token")
			http.Redirect(w, r, authErrorURL(uierrors.CodeVerification), http.StatusSeeOther)
			return
		}
		// The session still works without the profile; it loads lazily.
		h.Log.Warn("profile load after sign in failed", zap.Error(meErr))
	}

	u := &auth.SessionUser{
		ID:        sess.UserID.String(),
		Name:      me.Name,
		Role:      sess.Role,
		SocietyID: me.CurrentSocietyRef().String(),
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
	}
	if err := h.SessionMgr.SignIn(w, r, u); err != nil {
		h.Log.Error("save session failed", zap.Error(err), zap.String("user_id", u.ID))
		http.Redirect(w, r, authErrorURL(uierrors.CodeDefault), http.StatusSeeOther)
		return
	}
	if h.States != nil && meErr == nil {
		h.States.GetOrCreate(u.StateKey).SetProfile(me)
	}

	if h.Limiter != nil {
		h.Limiter.ResetPhone(phone)
	}
	if h.Logins != nil {
		if err := h.Logins.CreateFrom(r.Context(), r, u.ID, u.Role, phone); err != nil {
			h.Log.Warn("record login failed", zap.Error(err))
		}
	}
	h.AuditLog.LoginSuccess(r.Context(), r, u.ID, u.SocietyID, string(u.Role))

	http.Redirect(w, r, urlutil.SafeReturn(ret, "", "/dashboard"), http.StatusSeeOther)
}

// verifyErrorCode maps a failed verification to an auth error code.
func verifyErrorCode(err error) string {
	switch gateway.KindOf(err) {
	case gateway.KindBusiness, gateway.KindUnauthorized, gateway.KindNotFound:
		return uierrors.CodeVerification
	case gateway.KindForbidden:
		return uierrors.CodeAccessDenied
	case gateway.KindTransport:
		return uierrors.CodeConfiguration
	}
	return uierrors.CodeDefault
}
