package guard

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

type Variant string

const (
	VariantError   Variant = "error"
	VariantSuccess Variant = "success"
	VariantInfo    Variant = "info"
	VariantWarning Variant = "warning"
)

// Alert is a user-facing message surfaced by the client.
type Alert struct {
	Message string  `json:"message"`
	Variant Variant `json:"variant"`
	Title   string  `json:"title"`
}

// AlertSink hands an alert to whatever shows it to the user. Dismissal is
// the sink's business.
type AlertSink interface {
	SetAlert(w http.ResponseWriter, r *http.Request, a Alert)
}

const (
	AlertCookie = "portal_alert"
	AlertHeader = "X-Portal-Alert"
)

// CookieAlertSink stores the alert as a one-shot flash cookie and mirrors it
// in a response header for clients that do not follow redirects.
type CookieAlertSink struct {
	Secure bool
}

func (c CookieAlertSink) SetAlert(w http.ResponseWriter, r *http.Request, a Alert) {
	data, err := json.Marshal(a)
	if err != nil {
		return
	}
	value := base64.RawURLEncoding.EncodeToString(data)
	http.SetCookie(w, &http.Cookie{
		Name:     AlertCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	w.Header().Set(AlertHeader, value)
}

// ConsumeAlert reads the pending flash alert and expires its cookie.
func (c CookieAlertSink) ConsumeAlert(w http.ResponseWriter, r *http.Request) (*Alert, bool) {
	cookie, err := r.Cookie(AlertCookie)
	if err != nil {
		return nil, false
	}

	http.SetCookie(w, &http.Cookie{
		Name:     AlertCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	a, ok := DecodeAlert(cookie.Value)
	return a, ok
}

func DecodeAlert(value string) (*Alert, bool) {
	data, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, false
	}
	var a Alert
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, false
	}
	return &a, true
}
