package notify

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/classtide/classtide/internal/models"
	"github.com/classtide/classtide/internal/realtime"
)

// Relay subscribes to the inbound notification event and forwards each
// payload into the store, optionally surfacing a transient in-app toast.
type Relay struct {
	store *Store

	// alertsEnabled gates the toast on the user's "in-app alerts"
	// preference. A nil func means enabled.
	alertsEnabled func() bool

	// toast surfaces a transient alert built from the payload. May be nil.
	toast func(title, message string)
}

// NewRelay creates a relay over the given store.
func NewRelay(store *Store, alertsEnabled func() bool, toast func(title, message string)) *Relay {
	return &Relay{store: store, alertsEnabled: alertsEnabled, toast: toast}
}

// Store returns the backing notification store.
func (r *Relay) Store() *Store { return r.store }

// Attach subscribes to the realtime notification event for the lifetime of
// an active connection and returns the detach function. Malformed payloads
// are logged and dropped, never propagated.
func (r *Relay) Attach(m *realtime.Manager) func() {
	return m.On(realtime.EventNotification, func(data json.RawMessage) {
		var n models.Notification
		if err := json.Unmarshal(data, &n); err != nil {
			log.Warn().Err(err).Msg("malformed notification payload")
			return
		}
		if n.ID == "" {
			n.ID = uuid.NewString()
		}
		n.Read = false

		r.store.Add(n)
		log.Debug().Str("id", n.ID).Str("type", n.Type).Msg("notification received")

		if r.toast != nil && (r.alertsEnabled == nil || r.alertsEnabled()) {
			r.toast(n.Title, n.Message)
		}
	})
}
