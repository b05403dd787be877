package main

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"
)

// handleSoilLocation returns soil data for ?lat=&lon=. Upstream failures
// still answer 200 with an estimated profile.
func (a *App) handleSoilLocation(w http.ResponseWriter, r *http.Request) {
	latStr, lonStr := r.URL.Query().Get("lat"), r.URL.Query().Get("lon")
	if latStr == "" || lonStr == "" {
		writeError(w, http.StatusBadRequest, "Latitude (lat) and longitude (lon) are required", "")
		return
	}
	lat, err1 := strconv.ParseFloat(latStr, 64)
	lon, err2 := strconv.ParseFloat(lonStr, 64)
	if err1 != nil || err2 != nil || math.IsNaN(lat) || math.IsNaN(lon) || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		writeError(w, http.StatusBadRequest, "Invalid latitude or longitude", "")
		return
	}

	profile := a.soil.Lookup(r.Context(), lat, lon)
	writeJSON(w, http.StatusOK, map[string]any{
		"data":     profile,
		"location": map[string]float64{"latitude": lat, "longitude": lon},
	})
}

// handleHealth reports liveness and, when Mongo backs the store, reachability.
func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	store := "memory"
	if a.mongo != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.mongo.Ping(ctx, nil); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unreachable", err.Error())
			return
		}
		store = "mongo"
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "OK", "store": store})
}
