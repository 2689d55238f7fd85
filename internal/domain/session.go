package domain

import "time"

type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite,omitempty"`
}

type OriginStorage struct {
	Origin       string            `json:"origin"`
	LocalStorage map[string]string `json:"localStorage"`
}

// StorageState is the browser authentication context captured after login.
type StorageState struct {
	Cookies []Cookie        `json:"cookies"`
	Origins []OriginStorage `json:"origins,omitempty"`
}

func (s StorageState) Empty() bool {
	return len(s.Cookies) == 0 && len(s.Origins) == 0
}

type SessionState struct {
	UserID    string       `json:"userId"`
	Platform  Platform     `json:"platform"`
	Storage   StorageState `json:"storage"`
	CreatedAt time.Time    `json:"createdAt"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// ValidAt reports whether the session can be replayed at t.
func (s SessionState) ValidAt(t time.Time) bool {
	return !s.Storage.Empty() && t.Before(s.ExpiresAt)
}

func (s SessionState) Valid() bool {
	return s.ValidAt(time.Now())
}
