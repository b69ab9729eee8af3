package sink

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rgower/typeset/internal/block"
	"github.com/rgower/typeset/internal/structure"
	"github.com/rgower/typeset/internal/styles"
)

func testDocument() *Document {
	return &Document{
		Title:           "Letters",
		UsedAI:          true,
		SeparatorSymbol: "* * *",
		Elements: []Element{
			{
				Element: structure.Element{
					Block:       block.Heading(2, "Chapter One"),
					Role:        structure.RoleChapter,
					RenderLevel: 2,
				},
				Style: styles.Default().For("chapter", 2),
			},
			{
				Element: structure.Element{
					Block: block.Paragraph("It began in October."),
					Role:  structure.RoleBody,
				},
				Style: styles.Default().For("body", 0),
			},
		},
	}
}

func TestClientPush(t *testing.T) {
	var gotPath, gotAuth string
	var gotDoc Document
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotDoc); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret")
	if err := client.Push(context.Background(), testDocument()); err != nil {
		t.Fatalf("push failed: %v", err)
	}

	if gotPath != "/documents" {
		t.Errorf("expected POST /documents, got %s", gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("expected bearer auth, got %q", gotAuth)
	}
	if gotDoc.Title != "Letters" || len(gotDoc.Elements) != 2 {
		t.Errorf("unexpected payload title=%q elements=%d", gotDoc.Title, len(gotDoc.Elements))
	}
	if gotDoc.Elements[0].Style.SizePt != 18 {
		t.Errorf("expected chapter style to survive serialization, got %+v", gotDoc.Elements[0].Style)
	}
}

func TestClientPushNoAuthHeaderWithoutKey(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	if err := client.Push(context.Background(), testDocument()); err != nil {
		t.Fatalf("push failed: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("expected no auth header, got %q", gotAuth)
	}
}

func TestClientPushServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "renderer unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	err := client.Push(context.Background(), testDocument())
	if err == nil {
		t.Fatal("expected error on 503")
	}
}
