package daemon

import (
	"errors"
	"net/http"

	"animetracker/internal/episodes"
	"animetracker/internal/tracker"
)

const invalidBody = "Invalid JSON body"

var (
	showErrors      = errorText{notFound: "Show not found"}
	knownShowErrors = errorText{notFound: "Known show not found", conflict: "A show with this name already exists"}
)

func (s *apiServer) handleListShows(w http.ResponseWriter, r *http.Request) {
	shows, err := s.daemon.svc.Tracker.ListShows(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err, errorText{failure: "Failed to fetch shows"})
		return
	}
	if shows == nil {
		shows = []episodes.TrackedShow{}
	}
	s.writeJSON(w, http.StatusOK, shows)
}

func (s *apiServer) handleCreateShow(w http.ResponseWriter, r *http.Request) {
	var in tracker.ShowInput
	if err := decodeBody(r, &in); err != nil {
		s.writeError(w, http.StatusBadRequest, invalidBody)
		return
	}
	show, err := s.daemon.svc.Tracker.CreateShow(r.Context(), in)
	if err != nil {
		s.writeServiceError(w, r, err, errorText{failure: "Failed to create show"})
		return
	}
	s.writeJSON(w, http.StatusOK, show)
}

func (s *apiServer) handleGetShow(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "Invalid show ID")
		return
	}
	show, err := s.daemon.svc.Tracker.GetShow(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err, errorText{notFound: showErrors.notFound, failure: "Failed to fetch show"})
		return
	}
	s.writeJSON(w, http.StatusOK, show)
}

func (s *apiServer) handleUpdateShow(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "Invalid show ID")
		return
	}
	var patch tracker.ShowPatch
	if err := decodeBody(r, &patch); err != nil {
		s.writeError(w, http.StatusBadRequest, invalidBody)
		return
	}
	show, err := s.daemon.svc.Tracker.UpdateShow(r.Context(), id, patch)
	if err != nil {
		s.writeServiceError(w, r, err, errorText{notFound: showErrors.notFound, failure: "Failed to update show"})
		return
	}
	s.writeJSON(w, http.StatusOK, show)
}

func (s *apiServer) handleDeleteShow(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "Invalid show ID")
		return
	}
	if err := s.daemon.svc.Tracker.DeleteShow(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err, errorText{notFound: showErrors.notFound, failure: "Failed to delete show"})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *apiServer) handleRecalculate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "Invalid show ID")
		return
	}
	show, err := s.daemon.svc.Tracker.Recalculate(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err, errorText{notFound: showErrors.notFound, failure: "Failed to recalculate needed episodes"})
		return
	}
	s.writeJSON(w, http.StatusOK, show)
}

type toggleRequest struct {
	Season  *int `json:"season"`
	Episode *int `json:"episode"`
}

func (s *apiServer) handleToggleEpisode(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "Invalid show ID")
		return
	}
	var req toggleRequest
	if err := decodeBody(r, &req); err != nil || req.Season == nil || req.Episode == nil {
		s.writeError(w, http.StatusBadRequest, "Season and episode must be numbers")
		return
	}
	result, err := s.daemon.svc.Tracker.ToggleEpisode(r.Context(), id, *req.Season, *req.Episode)
	if err != nil {
		text := errorText{notFound: showErrors.notFound, failure: "Failed to toggle episode"}
		if errors.Is(err, tracker.ErrEpisodeNotTracked) {
			text.notFound = "Episode not found in either needed or downloaded lists"
		}
		s.writeServiceError(w, r, err, text)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *apiServer) handleListKnownShows(w http.ResponseWriter, r *http.Request) {
	catalog, err := s.daemon.svc.Tracker.Catalog(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err, errorText{failure: "Failed to fetch known shows"})
		return
	}
	if catalog == nil {
		catalog = episodes.Catalog{}
	}
	s.writeJSON(w, http.StatusOK, catalog)
}

func (s *apiServer) handleCreateKnownShow(w http.ResponseWriter, r *http.Request) {
	var in tracker.KnownShowInput
	if err := decodeBody(r, &in); err != nil {
		s.writeError(w, http.StatusBadRequest, invalidBody)
		return
	}
	entry, err := s.daemon.svc.Tracker.CreateKnownShow(r.Context(), in)
	if err != nil {
		text := knownShowErrors
		text.failure = "Failed to create known show"
		s.writeServiceError(w, r, err, text)
		return
	}
	s.writeJSON(w, http.StatusOK, entry)
}

func (s *apiServer) handleUpdateKnownShow(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "Invalid known show ID")
		return
	}
	var patch tracker.KnownShowPatch
	if err := decodeBody(r, &patch); err != nil {
		s.writeError(w, http.StatusBadRequest, invalidBody)
		return
	}
	entry, err := s.daemon.svc.Tracker.UpdateKnownShow(r.Context(), id, patch)
	if err != nil {
		text := knownShowErrors
		text.failure = "Failed to update known show"
		s.writeServiceError(w, r, err, text)
		return
	}
	s.writeJSON(w, http.StatusOK, entry)
}

func (s *apiServer) handleDeleteKnownShow(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "Invalid known show ID")
		return
	}
	if err := s.daemon.svc.Tracker.DeleteKnownShow(r.Context(), id); err != nil {
		text := knownShowErrors
		text.failure = "Failed to delete known show"
		s.writeServiceError(w, r, err, text)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
