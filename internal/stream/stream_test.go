package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"labctl/internal/api"
)

func TestEventsURL(t *testing.T) {
	t.Parallel()

	got, err := EventsURL("http://lab.example:8080", "lab-1")
	if err != nil {
		t.Fatalf("EventsURL: %v", err)
	}
	if got != "ws://lab.example:8080/events?lab_id=lab-1" {
		t.Fatalf("url=%q", got)
	}

	got, err = EventsURL("https://lab.example/", "")
	if err != nil {
		t.Fatalf("EventsURL: %v", err)
	}
	if got != "wss://lab.example/events" {
		t.Fatalf("url=%q", got)
	}

	if _, err := EventsURL("ftp://lab.example", "lab-1"); err == nil {
		t.Fatalf("expected scheme error")
	}
}

func TestDispatch_SkipsUnknownAndMalformed(t *testing.T) {
	t.Parallel()

	called := false
	ev := Events{NodeState: func(string, api.NodeState) { called = true }}

	dispatch([]byte(`{"type":"something_new","payload":42}`), ev)
	dispatch([]byte(`not json`), ev)
	dispatch([]byte(`{"type":"node_state"}`), ev) // missing node payload

	if called {
		t.Fatalf("unexpected callback")
	}
}

func TestSubscribe_ForwardsMessages(t *testing.T) {
	t.Parallel()

	upgrader := websocket.Upgrader{}
	frames := []string{
		`{"type":"node_state_snapshot","lab_id":"lab-1","nodes":[{"node_id":"ceos-1","actual_state":"running"}]}`,
		`{"type":"node_state","lab_id":"lab-1","node":{"node_id":"ceos-1","actual_state":"stopping"}}`,
		`{"type":"host_metrics","hosts":[{"host_id":"h1","cpu_pct":42.5}]}`,
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("lab_id") != "lab-1" {
			t.Errorf("lab_id=%q", r.URL.Query().Get("lab_id"))
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		for _, frame := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	wsURL, err := EventsURL(srv.URL, "lab-1")
	if err != nil {
		t.Fatalf("EventsURL: %v", err)
	}

	var snapshots, updates, metrics int
	var lastActual string
	ev := Events{
		NodeSnapshot: func(labID string, nodes []api.NodeState) {
			snapshots++
			if labID != "lab-1" || len(nodes) != 1 {
				t.Errorf("snapshot lab=%q nodes=%d", labID, len(nodes))
			}
		},
		NodeState: func(labID string, node api.NodeState) {
			updates++
			lastActual = node.ActualState
		},
		HostMetrics: func(hosts []api.HostMetric) {
			metrics++
			if len(hosts) != 1 || hosts[0].CPUPct != 42.5 {
				t.Errorf("hosts=%+v", hosts)
			}
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Subscribe ends with a read error once the server closes the socket.
	err = Subscribe(ctx, wsURL, "", ev)
	if err == nil {
		t.Fatalf("expected stream end error")
	}
	if strings.Contains(err.Error(), "deadline") {
		t.Fatalf("stream did not finish: %v", err)
	}
	if snapshots != 1 || updates != 1 || metrics != 1 {
		t.Fatalf("snapshots=%d updates=%d metrics=%d", snapshots, updates, metrics)
	}
	if lastActual != "stopping" {
		t.Fatalf("last actual=%q", lastActual)
	}
}

func TestSubscribe_ContextCancel(t *testing.T) {
	t.Parallel()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		// Hold the connection open; the client cancels.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	wsURL, err := EventsURL(srv.URL, "")
	if err != nil {
		t.Fatalf("EventsURL: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	if err := Subscribe(ctx, wsURL, "", Events{}); err != context.Canceled {
		t.Fatalf("err=%v", err)
	}
}
