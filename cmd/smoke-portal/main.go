package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	"civicdesk.org/internal/client"
)

// End-to-end smoke run against a live API: register a citizen, log in,
// open the live channel, file a complaint, and confirm the status
// update from an admin response reaches the collection.
func main() {
	baseURL := os.Getenv("CIVICDESK_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	adminEmail := os.Getenv("CIVICDESK_ADMIN_EMAIL")
	adminPassword := os.Getenv("CIVICDESK_ADMIN_PASSWORD")
	if adminEmail == "" || adminPassword == "" {
		log.Fatal("set CIVICDESK_ADMIN_EMAIL and CIVICDESK_ADMIN_PASSWORD")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	coll := client.NewCollection()
	api := client.New(baseURL)
	sessions := client.NewSessionStore(api, client.NewMemoryTokenStore(),
		client.WithLiveDialer(client.CollectionDialer(baseURL, coll)))

	email := fmt.Sprintf("smoke-%d@example.com", rand.Int())
	if _, err := sessions.Register(ctx, "Smoke Tester", email, "smoke-password-1"); err != nil {
		log.Fatalf("register: %v", err)
	}
	session, err := sessions.Login(ctx, email, "smoke-password-1")
	if err != nil {
		log.Fatalf("login: %v", err)
	}
	if session.RedirectPath() != "/dashboard" {
		log.Fatalf("unexpected redirect for citizen: %s", session.RedirectPath())
	}

	filed, err := api.SubmitComplaint(ctx, client.ComplaintSubmission{
		Title:       "Streetlight out",
		Description: "The light on Main St has been dark for a week.",
		Category:    "infrastructure",
		Attachments: []client.AttachmentUpload{{
			FileName:    "photo.txt",
			ContentType: "text/plain",
			Data:        strings.NewReader("placeholder photo"),
		}},
	})
	if err != nil {
		log.Fatalf("submit complaint: %v", err)
	}
	if filed.Status != "pending" {
		log.Fatalf("fresh complaint status = %q, want pending", filed.Status)
	}
	coll.Append(filed)

	// Resolve the complaint as admin through a second client; the
	// citizen's live channel should pick the change up.
	admin := client.New(baseURL)
	adminSessions := client.NewSessionStore(admin, client.NewMemoryTokenStore())
	if _, err := adminSessions.Login(ctx, adminEmail, adminPassword); err != nil {
		log.Fatalf("admin login: %v", err)
	}
	if _, err := admin.RespondToComplaint(ctx, filed.ID, "resolved", "Bulb replaced."); err != nil {
		log.Fatalf("respond: %v", err)
	}

	deadline := time.After(10 * time.Second)
	for {
		if c, ok := coll.Get(filed.ID); ok && c.Status == "resolved" {
			break
		}
		select {
		case <-deadline:
			log.Fatal("live update never arrived")
		case <-time.After(100 * time.Millisecond):
		}
	}

	if err := sessions.Logout(ctx); err != nil {
		log.Fatalf("logout: %v", err)
	}

	fmt.Printf("✅ portal smoke test passed: complaint=%s\n", filed.ID)
}
