package notify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/assert/v2"
)

func botServer(t *testing.T, sent *[]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/bottest-token/getMe":
			io.WriteString(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"blogbot","username":"blogbot"}}`)
		case "/bottest-token/sendMessage":
			r.ParseForm()
			assert.Equal(t, "42", r.Form.Get("chat_id"))
			*sent = append(*sent, r.Form.Get("text"))
			io.WriteString(w, `{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"},"text":"ok"}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"ok":false,"error_code":404,"description":"Not Found"}`)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTelegramNotify(t *testing.T) {
	var sent []string
	srv := botServer(t, &sent)

	n, err := NewTelegram("test-token", 42, srv.URL+"/bot%s/%s", srv.Client())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := n.Notify(context.Background(), "AI Evolution", "https://blog.example/p.html"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	assert.Equal(t, []string{"Published: AI Evolution\nhttps://blog.example/p.html"}, sent)
}

func TestTelegramBadToken(t *testing.T) {
	var sent []string
	srv := botServer(t, &sent)

	if _, err := NewTelegram("wrong", 42, srv.URL+"/bot%s/%s", srv.Client()); err == nil {
		t.Fatal("expected error for unknown bot")
	}
}

func TestTelegramCancelled(t *testing.T) {
	var sent []string
	srv := botServer(t, &sent)

	n, err := NewTelegram("test-token", 42, srv.URL+"/bot%s/%s", srv.Client())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := n.Notify(ctx, "t", "l"); err == nil {
		t.Error("expected error for cancelled context")
	}
	assert.Equal(t, 0, len(sent))
}
