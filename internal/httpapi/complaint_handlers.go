package httpapi

import (
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"civicdesk.org/internal/audit"
	"civicdesk.org/internal/auth"
	"civicdesk.org/internal/complaint"
	"civicdesk.org/internal/obs"
	"civicdesk.org/internal/stream"
)

type respondRequest struct {
	Status   string `json:"status"`
	Response string `json:"response"`
}

type assignAgencyRequest struct {
	AgencyID string `json:"agencyId"`
}

func (a *API) handleComplaintsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listComplaints(w, r)
	case http.MethodPost:
		a.submitComplaint(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleComplaintResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/complaints/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	if strings.HasSuffix(path, "/respond") {
		id := strings.TrimSuffix(strings.TrimSuffix(path, "/respond"), "/")
		a.respondToComplaint(w, r, id)
		return
	}
	if strings.HasSuffix(path, "/assign-agency") {
		id := strings.TrimSuffix(strings.TrimSuffix(path, "/assign-agency"), "/")
		a.assignAgency(w, r, id)
		return
	}
	if strings.Contains(path, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		a.getComplaint(w, r, path)
	default:
		methodNotAllowed(w, r, http.MethodGet)
	}
}

// scopeFor maps a viewer to the subset of complaints they may see:
// citizens their own, agency operators their agency's, admins all.
func scopeFor(user auth.User) complaint.Scope {
	switch user.Role {
	case auth.RoleCitizen:
		return complaint.Scope{UserID: user.ID}
	case auth.RoleAgency:
		return complaint.Scope{AgencyID: user.AgencyID}
	default:
		return complaint.Scope{}
	}
}

func visibleTo(user auth.User, c complaint.Complaint) bool {
	switch user.Role {
	case auth.RoleCitizen:
		return c.UserID == user.ID
	case auth.RoleAgency:
		return c.AgencyID != "" && c.AgencyID == user.AgencyID
	default:
		return true
	}
}

func (a *API) listComplaints(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	items, err := a.complaints.List(r.Context(), scopeFor(user))
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (a *API) getComplaint(w http.ResponseWriter, r *http.Request, id string) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	c, err := a.complaints.Get(r.Context(), id)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	if !visibleTo(user, c) {
		// Hide existence from viewers outside the complaint's scope.
		writeError(w, r, http.StatusNotFound, complaint.ErrNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *API) submitComplaint(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := r.ParseMultipartForm(a.maxBody); err != nil {
		writeError(w, r, http.StatusBadRequest, "multipart form required")
		return
	}

	nc := complaint.NewComplaint{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		UserID:      user.ID,
	}

	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["attachments"] {
			att, err := a.storeAttachment(fh)
			if err != nil {
				writeError(w, r, http.StatusInternalServerError, "failed to store attachment")
				return
			}
			nc.Attachments = append(nc.Attachments, att)
		}
	}

	c, err := a.complaints.Submit(r.Context(), nc)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	obs.ComplaintSubmitted()
	_ = audit.LogEvent(r.Context(), "complaint.submitted", map[string]any{
		"complaint_id": c.ID,
		"category":     c.Category,
	})

	writeJSON(w, http.StatusCreated, c)
}

func (a *API) storeAttachment(fh *multipart.FileHeader) (complaint.Attachment, error) {
	src, err := fh.Open()
	if err != nil {
		return complaint.Attachment{}, err
	}
	defer src.Close()

	if err := os.MkdirAll(a.uploadDir, 0o755); err != nil {
		return complaint.Attachment{}, err
	}
	id := uuid.NewString()
	dstPath := filepath.Join(a.uploadDir, id+filepath.Ext(fh.Filename))
	dst, err := os.Create(dstPath)
	if err != nil {
		return complaint.Attachment{}, err
	}
	defer dst.Close()

	size, err := io.Copy(dst, src)
	if err != nil {
		return complaint.Attachment{}, err
	}
	return complaint.Attachment{
		ID:          id,
		FileName:    filepath.Base(fh.Filename),
		ContentType: fh.Header.Get("Content-Type"),
		Size:        size,
		StoragePath: dstPath,
	}, nil
}

func (a *API) respondToComplaint(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w, r, http.MethodPut)
		return
	}
	user, ok := a.requireRole(w, r, auth.RoleAdmin, auth.RoleAgency)
	if !ok {
		return
	}
	if user.Role == auth.RoleAgency {
		existing, err := a.complaints.Get(r.Context(), id)
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		if !visibleTo(user, existing) {
			writeError(w, r, http.StatusNotFound, complaint.ErrNotFound.Error())
			return
		}
	}

	var req respondRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	c, err := a.complaints.Respond(r.Context(), id, req.Status, req.Response)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	a.publish(stream.Event{
		Type:        stream.TypeStatusUpdate,
		ComplaintID: c.ID,
		Status:      c.Status,
	})
	_ = audit.LogEvent(r.Context(), "complaint.responded", map[string]any{
		"complaint_id": c.ID,
		"status":       c.Status,
	})

	writeJSON(w, http.StatusOK, c)
}

func (a *API) assignAgency(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w, r, http.MethodPut)
		return
	}
	if _, ok := a.requireRole(w, r, auth.RoleAdmin); !ok {
		return
	}

	var req assignAgencyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := a.auth.GetAgency(r.Context(), req.AgencyID); err != nil {
		handleDomainError(w, r, err)
		return
	}

	c, err := a.complaints.AssignAgency(r.Context(), id, req.AgencyID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	// Assignment publishes both the reserved assignment tag and the
	// status change clients actually act on.
	a.publish(stream.Event{
		Type:        stream.TypeAssigned,
		ComplaintID: c.ID,
		AgencyID:    c.AgencyID,
	})
	a.publish(stream.Event{
		Type:        stream.TypeStatusUpdate,
		ComplaintID: c.ID,
		Status:      c.Status,
	})
	_ = audit.LogEvent(r.Context(), "complaint.assigned", map[string]any{
		"complaint_id": c.ID,
		"agency_id":    c.AgencyID,
	})

	writeJSON(w, http.StatusOK, c)
}

func (a *API) publish(evt stream.Event) {
	if a.hub == nil {
		return
	}
	a.hub.Publish(evt)
	if evt.Type == stream.TypeStatusUpdate {
		obs.StatusUpdatePublished()
	}
}
