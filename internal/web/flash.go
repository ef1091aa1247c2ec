package web

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

const flashCookie = "flash"

// Banner categories.
const (
	categorySuccess = "success"
	categoryError   = "error"
	categoryWarning = "warning"
)

// Flash is a one-shot banner shown on the next page render.
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// setFlash stores banners in a cookie that survives one redirect.
func setFlash(w http.ResponseWriter, flashes ...Flash) {
	data, err := json.Marshal(flashes)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(data),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash reads and clears the pending banners. A damaged cookie is
// dropped silently.
func popFlash(w http.ResponseWriter, r *http.Request) []Flash {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Path: "/", MaxAge: -1})

	data, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal(data, &flashes); err != nil {
		return nil
	}
	return flashes
}

func redirectWithFlash(w http.ResponseWriter, r *http.Request, to string, flashes ...Flash) {
	setFlash(w, flashes...)
	http.Redirect(w, r, to, http.StatusSeeOther)
}
