package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/dnounce/dnounce-api/analytics"
	"github.com/dnounce/dnounce-api/config"
	"github.com/dnounce/dnounce-api/models"
)

// Events accepts analytics events from the front end
type Events struct {
	Analytics *analytics.Service
}

// TrackEventHandler queues one event and answers 202 whether or not the
// queue had room.
func (e Events) TrackEventHandler(w http.ResponseWriter, r *http.Request) {
	var ev analytics.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if !analytics.Known(ev.Name) {
		config.ErrorStatus("unknown event", http.StatusBadRequest, w, nil)
		return
	}
	id := ev.AnonID
	if id == "" {
		id = anonID(r)
	}
	e.Analytics.Track(ev.Name, id, ev.Properties)
	writeJSON(w, http.StatusAccepted, models.StoreResponse{Success: true, Message: "accepted"})
}
