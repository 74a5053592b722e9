package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"

	"civicdesk.org/internal/complaint"
)

// ComplaintSubmission is the multipart payload for filing a complaint.
type ComplaintSubmission struct {
	Title       string
	Description string
	Category    string
	Attachments []AttachmentUpload
}

// AttachmentUpload is one file part of a submission.
type AttachmentUpload struct {
	FileName    string
	ContentType string
	Data        io.Reader
}

// ListComplaints returns the complaints visible to the session's role.
func (c *Client) ListComplaints(ctx context.Context) ([]complaint.Complaint, error) {
	var items []complaint.Complaint
	err := c.doJSON(ctx, http.MethodGet, "/api/complaints", nil, &items, "failed to load complaints")
	return items, err
}

// GetComplaint fetches a single complaint by id.
func (c *Client) GetComplaint(ctx context.Context, id string) (complaint.Complaint, error) {
	var item complaint.Complaint
	path := "/api/complaints/" + url.PathEscape(id)
	err := c.doJSON(ctx, http.MethodGet, path, nil, &item, "failed to load complaint")
	return item, err
}

// SubmitComplaint files a new complaint with optional attachments.
func (c *Client) SubmitComplaint(ctx context.Context, sub ComplaintSubmission) (complaint.Complaint, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("title", sub.Title); err != nil {
		return complaint.Complaint{}, fmt.Errorf("encode submission: %w", err)
	}
	if err := mw.WriteField("description", sub.Description); err != nil {
		return complaint.Complaint{}, fmt.Errorf("encode submission: %w", err)
	}
	if err := mw.WriteField("category", sub.Category); err != nil {
		return complaint.Complaint{}, fmt.Errorf("encode submission: %w", err)
	}
	for _, att := range sub.Attachments {
		part, err := createFilePart(mw, att)
		if err != nil {
			return complaint.Complaint{}, fmt.Errorf("encode attachment %q: %w", att.FileName, err)
		}
		if _, err := io.Copy(part, att.Data); err != nil {
			return complaint.Complaint{}, fmt.Errorf("encode attachment %q: %w", att.FileName, err)
		}
	}
	if err := mw.Close(); err != nil {
		return complaint.Complaint{}, fmt.Errorf("encode submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/complaints", &buf)
	if err != nil {
		return complaint.Complaint{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var item complaint.Complaint
	if err := c.send(req, &item, "failed to submit complaint"); err != nil {
		return complaint.Complaint{}, err
	}
	return item, nil
}

// RespondToComplaint records an agency or admin response together with
// a status change.
func (c *Client) RespondToComplaint(ctx context.Context, id, status, response string) (complaint.Complaint, error) {
	body := map[string]string{"status": status, "response": response}
	var item complaint.Complaint
	path := "/api/complaints/" + url.PathEscape(id) + "/respond"
	err := c.doJSON(ctx, http.MethodPut, path, body, &item, "failed to update complaint")
	return item, err
}

// AssignAgency routes a complaint to an agency. Admin only.
func (c *Client) AssignAgency(ctx context.Context, id, agencyID string) (complaint.Complaint, error) {
	body := map[string]string{"agencyId": agencyID}
	var item complaint.Complaint
	path := "/api/complaints/" + url.PathEscape(id) + "/assign-agency"
	err := c.doJSON(ctx, http.MethodPut, path, body, &item, "failed to assign agency")
	return item, err
}

func createFilePart(mw *multipart.Writer, att AttachmentUpload) (io.Writer, error) {
	if att.ContentType == "" {
		return mw.CreateFormFile("attachments", att.FileName)
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="attachments"; filename=%q`, att.FileName))
	h.Set("Content-Type", att.ContentType)
	return mw.CreatePart(h)
}
