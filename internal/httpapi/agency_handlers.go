package httpapi

import (
	"net/http"
	"strings"

	"civicdesk.org/internal/audit"
	"civicdesk.org/internal/auth"
)

type createAgencyRequest struct {
	Name         string   `json:"name"`
	Categories   []string `json:"categories"`
	ContactEmail string   `json:"contactEmail"`
}

type updateAgencyRequest struct {
	Name         *string  `json:"name"`
	Categories   []string `json:"categories"`
	ContactEmail *string  `json:"contactEmail"`
}

func (a *API) handleAgenciesCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		agencies, err := a.auth.ListAgencies(r.Context())
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, agencies)
	case http.MethodPost:
		if _, ok := a.requireRole(w, r, auth.RoleAdmin); !ok {
			return
		}
		var req createAgencyRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		agency, err := a.auth.CreateAgency(r.Context(), req.Name, req.Categories, req.ContactEmail)
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "agency.created", map[string]any{"agency_id": agency.ID})
		writeJSON(w, http.StatusCreated, agency)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleAgencyResource(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/agencies/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		agency, err := a.auth.GetAgency(r.Context(), id)
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, agency)
	case http.MethodPut:
		if _, ok := a.requireRole(w, r, auth.RoleAdmin); !ok {
			return
		}
		var req updateAgencyRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		agency, err := a.auth.UpdateAgency(r.Context(), id, auth.AgencyUpdate{
			Name:         req.Name,
			Categories:   req.Categories,
			ContactEmail: req.ContactEmail,
		})
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "agency.updated", map[string]any{"agency_id": agency.ID})
		writeJSON(w, http.StatusOK, agency)
	case http.MethodDelete:
		if _, ok := a.requireRole(w, r, auth.RoleAdmin); !ok {
			return
		}
		if err := a.auth.DeleteAgency(r.Context(), id); err != nil {
			handleDomainError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "agency.deleted", map[string]any{"agency_id": id})
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}
