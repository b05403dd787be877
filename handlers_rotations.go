package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"krishimitra/models"
	"krishimitra/rotation"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const recordNotFound = "Crop rotation record not found"

// handleListRotations returns the caller's fields, most recently updated first.
func (a *App) handleListRotations(w http.ResponseWriter, r *http.Request) {
	uid := mustUserID(r)

	recs, err := a.rotations.List(r.Context(), uid)
	if err != nil {
		writeServiceError(w, err, recordNotFound, "Failed to fetch crop rotation data")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(recs), "rotations": recs})
}

// handleGetRotationByField looks a record up by the caller's own field id.
func (a *App) handleGetRotationByField(w http.ResponseWriter, r *http.Request) {
	uid := mustUserID(r)

	rec, err := a.rotations.GetByField(r.Context(), uid, chi.URLParam(r, "fieldId"))
	if err != nil {
		writeServiceError(w, err, "Field not found", "Failed to fetch field rotation data")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rotation": rec})
}

func (a *App) handleGetRotation(w http.ResponseWriter, r *http.Request) {
	uid := mustUserID(r)
	oid, ok := pathID(w, r)
	if !ok {
		return
	}

	rec, err := a.rotations.Get(r.Context(), uid, oid)
	if err != nil {
		writeServiceError(w, err, recordNotFound, "Failed to fetch crop rotation data")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rotation": rec})
}

// handleCreateRotation registers a field. Derived analysis is computed before
// the insert, so the response already carries it.
func (a *App) handleCreateRotation(w http.ResponseWriter, r *http.Request) {
	uid := mustUserID(r)

	var req createRotationReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json", err.Error())
		return
	}
	if req.UserID != "" && req.UserID != uid.Hex() {
		writeError(w, http.StatusForbidden, "userId does not match the authenticated user", "")
		return
	}

	in := rotation.CreateInput{
		UserID:            uid,
		FieldID:           req.FieldID,
		FieldName:         req.FieldName,
		Area:              req.Area,
		CurrentSoilHealth: req.CurrentSoilHealth,
	}
	for _, e := range req.RotationHistory {
		in.RotationHistory = append(in.RotationHistory, e.toModel())
	}

	rec, err := a.rotations.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, err, recordNotFound, "Failed to create crop rotation record")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":  "Crop rotation record created successfully",
		"rotation": rec,
	})
}

// handleAddCrop appends one planting to the rotation history.
func (a *App) handleAddCrop(w http.ResponseWriter, r *http.Request) {
	uid := mustUserID(r)
	oid, ok := pathID(w, r)
	if !ok {
		return
	}

	var req rotationEntryReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json", err.Error())
		return
	}

	rec, err := a.rotations.AppendEntry(r.Context(), uid, oid, req.toModel())
	if err != nil {
		writeServiceError(w, err, recordNotFound, "Failed to add crop to rotation")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Crop added to rotation history",
		"rotation": rec,
	})
}

// handleUpdateSoilHealth overwrites the nutrients present in the body. An
// empty body keeps every value and only stamps lastTested.
func (a *App) handleUpdateSoilHealth(w http.ResponseWriter, r *http.Request) {
	uid := mustUserID(r)
	oid, ok := pathID(w, r)
	if !ok {
		return
	}

	var req models.SoilReading
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad json", err.Error())
		return
	}

	rec, err := a.rotations.UpdateSoilHealth(r.Context(), uid, oid, req)
	if err != nil {
		writeServiceError(w, err, recordNotFound, "Failed to update soil health data")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Soil health data updated",
		"rotation": rec,
	})
}

func (a *App) handleRotationAnalysis(w http.ResponseWriter, r *http.Request) {
	uid := mustUserID(r)
	oid, ok := pathID(w, r)
	if !ok {
		return
	}

	an, err := a.rotations.Analysis(r.Context(), uid, oid)
	if err != nil {
		writeServiceError(w, err, recordNotFound, "Failed to analyze crop rotation")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"analysis": an})
}

// handleUpdateRotationField updates fieldName and/or area only.
func (a *App) handleUpdateRotationField(w http.ResponseWriter, r *http.Request) {
	uid := mustUserID(r)
	oid, ok := pathID(w, r)
	if !ok {
		return
	}

	var req updateFieldReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json", err.Error())
		return
	}

	rec, err := a.rotations.UpdateField(r.Context(), uid, oid, rotation.FieldUpdate{
		FieldName: req.FieldName,
		Area:      req.Area,
	})
	if err != nil {
		writeServiceError(w, err, recordNotFound, "Failed to update field")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Field updated successfully",
		"rotation": rec,
	})
}

func (a *App) handleDeleteRotation(w http.ResponseWriter, r *http.Request) {
	uid := mustUserID(r)
	oid, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := a.rotations.Delete(r.Context(), uid, oid); err != nil {
		writeServiceError(w, err, recordNotFound, "Failed to delete crop rotation record")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Crop rotation record deleted successfully"})
}

// pathID parses {id} as an ObjectID, writing 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad id", "")
		return primitive.NilObjectID, false
	}
	return oid, true
}
