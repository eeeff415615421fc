package doctor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/websocket"

	"labctl/internal/config"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	if got := classify([]string{"1.2.3.4:1000"}); got != NATUnknown {
		t.Fatalf("single=%s", got)
	}
	if got := classify([]string{"1.2.3.4:1000", "1.2.3.4:1000"}); got != NATConeOrRestricted {
		t.Fatalf("same=%s", got)
	}
	if got := classify([]string{"1.2.3.4:1000", "1.2.3.4:2000"}); got != NATSymmetric {
		t.Fatalf("differs=%s", got)
	}
}

func TestRun_HealthAndStream(t *testing.T) {
	t.Parallel()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"ok","version":"1.4.2"}`))
		case "/events":
			conn, err := upgrader.Upgrade(w, r, nil)
			if err != nil {
				return
			}
			conn.Close()
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	cfg := config.Config{Server: &config.ServerConfig{URL: srv.URL}}
	checks := Run(context.Background(), cfg)
	if len(checks) != 2 {
		t.Fatalf("checks=%d", len(checks))
	}
	for _, c := range checks {
		if !c.OK {
			t.Fatalf("check %s failed: %s", c.Name, c.Detail)
		}
	}
}

func TestRun_MissingServer(t *testing.T) {
	t.Parallel()

	checks := Run(context.Background(), config.Config{})
	if len(checks) != 1 || checks[0].OK {
		t.Fatalf("checks=%+v", checks)
	}
}
