package extract

import (
	"encoding/json"
	"html"
	"strings"
)

// entityPayload is the embedded structured-data document carried by
// map list cards. Only the geometry portion is read.
type entityPayload struct {
	Entity struct {
		Title    string `json:"title"`
		Phone    string `json:"phone"`
		Geometry *struct {
			X float64 `json:"x"` // longitude
			Y float64 `json:"y"` // latitude
		} `json:"geometry"`
		RoutablePoint *struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"routablePoint"`
	} `json:"entity"`
}

// decodeEntity unescapes an HTML-entity-encoded JSON attribute and
// reads the coordinates, preferring geometry and falling back to
// routablePoint. A malformed or missing payload yields (nil, nil):
// decode failures never travel past the fields they feed.
func decodeEntity(raw string) (lat, lng *float64) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var payload entityPayload
	if err := json.Unmarshal([]byte(html.UnescapeString(raw)), &payload); err != nil {
		return nil, nil
	}

	if g := payload.Entity.Geometry; g != nil {
		return &g.Y, &g.X
	}
	if rp := payload.Entity.RoutablePoint; rp != nil {
		return &rp.Latitude, &rp.Longitude
	}
	return nil, nil
}
