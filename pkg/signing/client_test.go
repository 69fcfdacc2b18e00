package signing_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"github.com/signetlabs/chase/pkg/signing"
)

func newClient(t *testing.T, handler http.Handler) (*signing.Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &signing.Config{
		BaseURL:      srv.URL,
		APIKey:       "test-key",
		PollInterval: "1ms",
		PollTimeout:  "250ms",
		DocumentURL:  "https://sign.example.com/documents",
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return signing.New(cfg, logger), srv
}

func TestUpload(t *testing.T) {
	var gotAuth string
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")

		if err := r.ParseMultipartForm(10 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		var meta struct {
			Name       string              `json:"name"`
			Recipients []signing.Recipient `json:"recipients"`
		}
		if err := json.Unmarshal([]byte(r.FormValue("data")), &meta); err != nil {
			t.Errorf("parse data field: %v", err)
		}
		if meta.Name != "Agreement" || len(meta.Recipients) != 1 {
			t.Errorf("metadata = %+v", meta)
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("file part missing: %v", err)
		}

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": "doc-42", "name": "Agreement"})
	}))

	doc, err := client.Upload(context.Background(), "Agreement", []byte("%PDF"), []signing.Recipient{
		{Email: "sam@example.com", FirstName: "Sam", Role: signing.RoleSigner},
	})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if doc.ID != "doc-42" {
		t.Errorf("doc.ID = %q", doc.ID)
	}
	if gotAuth != "API-Key test-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestUploadRejectsNon201(t *testing.T) {
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	_, err := client.Upload(context.Background(), "Agreement", []byte("%PDF"), nil)
	if !errors.Is(err, signing.ErrUpload) {
		t.Errorf("Upload() error = %v, want ErrUpload", err)
	}
}

func TestDetailsStillProcessing(t *testing.T) {
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))

	_, err := client.Details(context.Background(), "doc-42")
	if !errors.Is(err, signing.ErrNotReady) {
		t.Errorf("Details() error = %v, want ErrNotReady", err)
	}
}

func TestWaitReadyPollsUntilDraft(t *testing.T) {
	var calls atomic.Int32
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		switch {
		case n == 1:
			w.WriteHeader(http.StatusConflict)
		case n == 2:
			json.NewEncoder(w).Encode(map[string]string{"id": "doc-42", "status": signing.StatusProcessing})
		default:
			json.NewEncoder(w).Encode(map[string]string{"id": "doc-42", "status": signing.StatusDraft})
		}
	}))

	details, err := client.WaitReady(context.Background(), "doc-42")
	if err != nil {
		t.Fatalf("WaitReady() error = %v", err)
	}
	if details.Status != signing.StatusDraft {
		t.Errorf("Status = %q, want draft", details.Status)
	}
	if calls.Load() < 3 {
		t.Errorf("calls = %d, want at least 3", calls.Load())
	}
}

func TestWaitReadyUnexpectedStatus(t *testing.T) {
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"id": "doc-42", "status": signing.StatusCompleted})
	}))

	_, err := client.WaitReady(context.Background(), "doc-42")
	if !errors.Is(err, signing.ErrUnexpectedStatus) {
		t.Errorf("WaitReady() error = %v, want ErrUnexpectedStatus", err)
	}
}

func TestWaitReadyTimesOut(t *testing.T) {
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))

	_, err := client.WaitReady(context.Background(), "doc-42")
	if !errors.Is(err, signing.ErrNotReady) {
		t.Errorf("WaitReady() error = %v, want ErrNotReady", err)
	}
}

func TestSend(t *testing.T) {
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/doc-42/send" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var body struct {
			Message string `json:"message"`
			Silent  bool   `json:"silent"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body.Silent {
			t.Error("silent = true, recipients must be notified")
		}
		w.WriteHeader(http.StatusOK)
	}))

	if err := client.Send(context.Background(), "doc-42", "please sign"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
}

func TestSendRejectsNon200(t *testing.T) {
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))

	err := client.Send(context.Background(), "doc-42", "please sign")
	if !errors.Is(err, signing.ErrSend) {
		t.Errorf("Send() error = %v, want ErrSend", err)
	}
}

func TestCreateFields(t *testing.T) {
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/doc-42/fields" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var body struct {
			Fields []signing.Field `json:"fields"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if len(body.Fields) != 2 {
			t.Errorf("fields = %d, want 2", len(body.Fields))
		}
		w.WriteHeader(http.StatusCreated)
	}))

	fields := []signing.Field{
		{Name: "signature_1", Type: "signature", AssignedTo: "sam@example.com"},
		{Name: "signature_2", Type: "signature", AssignedTo: "robin@example.com"},
	}
	if err := client.CreateFields(context.Background(), "doc-42", fields); err != nil {
		t.Fatalf("CreateFields() error = %v", err)
	}
}

func TestDetailsSigned(t *testing.T) {
	tests := []struct {
		name    string
		details signing.Details
		want    bool
	}{
		{
			name:    "completed status",
			details: signing.Details{Status: signing.StatusCompleted},
			want:    true,
		},
		{
			name: "all recipients completed",
			details: signing.Details{
				Status: signing.StatusSent,
				Recipients: []signing.RecipientState{
					{Email: "a@example.com", HasCompleted: true},
					{Email: "b@example.com", HasCompleted: true},
				},
			},
			want: true,
		},
		{
			name: "one recipient outstanding",
			details: signing.Details{
				Status: signing.StatusSent,
				Recipients: []signing.RecipientState{
					{Email: "a@example.com", HasCompleted: true},
					{Email: "b@example.com", HasCompleted: false},
				},
			},
			want: false,
		},
		{
			name:    "sent with no recipient data",
			details: signing.Details{Status: signing.StatusSent},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.details.Signed(); got != tt.want {
				t.Errorf("Signed() = %v, want %v", got, tt.want)
			}
		})
	}
}
