package stream

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"labctl/internal/api"
)

// Message kinds delivered on the event stream.
const (
	MessageNodeSnapshot = "node_state_snapshot"
	MessageNodeState    = "node_state"
	MessageHostMetrics  = "host_metrics"
)

// Envelope is the JSON frame carried on the event stream. Exactly one
// payload field is populated depending on Type.
type Envelope struct {
	Type  string           `json:"type"`
	LabID string           `json:"lab_id,omitempty"`
	Nodes []api.NodeState  `json:"nodes,omitempty"`
	Node  *api.NodeState   `json:"node,omitempty"`
	Hosts []api.HostMetric `json:"hosts,omitempty"`
}

// Events holds the callbacks invoked for each message kind. Nil
// callbacks and unknown message kinds are skipped. Callbacks run on the
// read loop goroutine, one at a time.
type Events struct {
	NodeSnapshot func(labID string, nodes []api.NodeState)
	NodeState    func(labID string, node api.NodeState)
	HostMetrics  func(hosts []api.HostMetric)
}

// EventsURL converts an API base URL into the websocket endpoint for a lab.
func EventsURL(baseURL, labID string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http", "":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", errors.New("unsupported scheme " + u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/events"
	q := u.Query()
	if labID != "" {
		q.Set("lab_id", labID)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Probe dials the stream endpoint to verify the handshake succeeds,
// then closes the connection.
func Probe(ctx context.Context, wsURL, token string) error {
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		return err
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	return conn.Close()
}

// Subscribe dials the event stream and forwards messages to ev until the
// context is cancelled or the connection fails. Returns ctx.Err() on
// cancellation, otherwise the read error that ended the stream.
func Subscribe(ctx context.Context, wsURL, token string, ev Events) error {
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		return err
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	// Unblock ReadMessage when the context ends.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		dispatch(data, ev)
	}
}

func dispatch(data []byte, ev Events) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Printf("stream: drop undecodable frame: %v", err)
		return
	}

	switch env.Type {
	case MessageNodeSnapshot:
		if ev.NodeSnapshot != nil {
			ev.NodeSnapshot(env.LabID, env.Nodes)
		}
	case MessageNodeState:
		if ev.NodeState != nil && env.Node != nil {
			ev.NodeState(env.LabID, *env.Node)
		}
	case MessageHostMetrics:
		if ev.HostMetrics != nil {
			ev.HostMetrics(env.Hosts)
		}
	default:
		// Newer servers may add message kinds; ignore them.
	}
}
