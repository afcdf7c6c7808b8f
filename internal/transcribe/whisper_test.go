package transcribe

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTranscribe(t *testing.T) {
	var gotAuth, gotModel, gotLang, gotFile string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		gotModel = r.FormValue("model")
		gotLang = r.FormValue("language")
		f, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer f.Close()
		gotFile = header.Filename
		if data, _ := io.ReadAll(f); string(data) != "OGGDATA" {
			t.Errorf("file body = %q", data)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"me gasté veinte mil en almuerzo"}`))
	}))
	defer srv.Close()

	c := New("sk-test")
	c.baseURL = srv.URL

	got, err := c.Transcribe(context.Background(), strings.NewReader("OGGDATA"), "voice.ogg")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if got != "me gasté veinte mil en almuerzo" {
		t.Errorf("text = %q", got)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("auth = %q", gotAuth)
	}
	if gotModel != "whisper-1" || gotLang != "es" {
		t.Errorf("model/lang = %q/%q", gotModel, gotLang)
	}
	if gotFile != "voice.ogg" {
		t.Errorf("filename = %q", gotFile)
	}
}

func TestTranscribe_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"unsupported format"}}`))
	}))
	defer srv.Close()

	c := New("sk-test")
	c.baseURL = srv.URL

	_, err := c.Transcribe(context.Background(), strings.NewReader("x"), "voice.ogg")
	if err == nil {
		t.Fatal("expected error on 400")
	}
	if !strings.Contains(err.Error(), "status 400") {
		t.Errorf("error = %v, want status in message", err)
	}
}
