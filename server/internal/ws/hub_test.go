package ws_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ecolab/ecolab/pkg/quality"
	"github.com/ecolab/ecolab/pkg/types"
	"github.com/ecolab/ecolab/server/internal/lab"
	"github.com/ecolab/ecolab/server/internal/store"
	wsHub "github.com/ecolab/ecolab/server/internal/ws"
)

const testInterval = 20 * time.Millisecond

// --- helpers ----------------------------------------------------------------

func newService(t *testing.T, water ...string) *lab.Service {
	t.Helper()
	svc := lab.New(store.New(time.Hour, 20), quality.LocaleEN, nil, nil)
	for _, id := range water {
		if _, err := svc.CreateSession(id, types.LabWater); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	return svc
}

// startHub starts a test HTTP server with the hub as its handler and runs
// the hub's broadcast loop until the returned cancel is called.
func startHub(t *testing.T, svc *lab.Service) (wsURL string, hub *wsHub.Hub, cancel func()) {
	t.Helper()

	hub = wsHub.New(svc, nil, testInterval)
	ctx, cancelFn := context.WithCancel(context.Background())

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeHTTP))
	go hub.Run(ctx)

	t.Cleanup(func() {
		cancelFn()
		srv.Close()
	})

	wsURL = "ws" + strings.TrimPrefix(srv.URL, "http")
	return wsURL, hub, cancelFn
}

func dial(t *testing.T, wsURL string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readMessage reads and decodes one message from conn with a short deadline.
func readMessage(t *testing.T, conn *websocket.Conn) wsHub.Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second)) //nolint:errcheck
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	var m wsHub.Message
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return m
}

// --- tests ------------------------------------------------------------------

func TestHub_Connect_ReceivesImmediateSnapshot(t *testing.T) {
	wsURL, _, _ := startHub(t, newService(t, "w1"))

	m := readMessage(t, dial(t, wsURL))
	if m.Event != "snapshot" {
		t.Errorf("event: got %q, want snapshot", m.Event)
	}
	if m.Data.GeneratedAt == "" {
		t.Error("generated_at: missing")
	}
	if len(m.Data.Sessions) != 1 || m.Data.Sessions[0].Result == nil {
		t.Fatalf("sessions: got %+v, want one graded session", m.Data.Sessions)
	}
	if got := m.Data.Sessions[0].Result.OverallScore; got != 90 {
		t.Errorf("overall_score: got %d, want 90", got)
	}
}

func TestHub_EmptyService_EmptySessions(t *testing.T) {
	wsURL, _, _ := startHub(t, newService(t))

	m := readMessage(t, dial(t, wsURL))
	if m.Data.Sessions == nil || len(m.Data.Sessions) != 0 {
		t.Errorf("sessions: got %v, want empty array", m.Data.Sessions)
	}
}

func TestHub_SessionFilter(t *testing.T) {
	wsURL, _, _ := startHub(t, newService(t, "w1", "w2", "w3"))

	all := readMessage(t, dial(t, wsURL))
	if len(all.Data.Sessions) != 3 {
		t.Errorf("unfiltered: got %d sessions, want 3", len(all.Data.Sessions))
	}

	one := readMessage(t, dial(t, wsURL+"?session=w2"))
	if len(one.Data.Sessions) != 1 || one.Data.Sessions[0].ID != "w2" {
		t.Errorf("filtered: got %+v, want only w2", one.Data.Sessions)
	}

	none := readMessage(t, dial(t, wsURL+"?session=missing"))
	if len(none.Data.Sessions) != 0 {
		t.Errorf("unknown session: got %d sessions, want 0", len(none.Data.Sessions))
	}
}

func TestHub_CountClients(t *testing.T) {
	wsURL, hub, _ := startHub(t, newService(t))

	for i := 0; i < 3; i++ {
		readMessage(t, dial(t, wsURL)) // consume initial message
	}

	time.Sleep(10 * time.Millisecond)
	if n := hub.Count(); n != 3 {
		t.Errorf("Count: got %d, want 3", n)
	}
}

func TestHub_CountClients_DecreasesOnDisconnect(t *testing.T) {
	wsURL, hub, _ := startHub(t, newService(t))

	conn := dial(t, wsURL)
	readMessage(t, conn)
	time.Sleep(10 * time.Millisecond)

	if n := hub.Count(); n != 1 {
		t.Errorf("Count before disconnect: got %d, want 1", n)
	}

	conn.Close()
	time.Sleep(50 * time.Millisecond) // let readPump detect the close

	if n := hub.Count(); n != 0 {
		t.Errorf("Count after disconnect: got %d, want 0", n)
	}
}

func TestHub_ReceivesBroadcastOnTick(t *testing.T) {
	svc := newService(t, "w1")
	wsURL, _, _ := startHub(t, svc)

	conn := dial(t, wsURL)
	readMessage(t, conn) // default reading

	clean := types.Measurement{PH: 7.2, Turbidity: 0.5, TDS: 200, Temperature: 22, DissolvedOxygen: 8.5}
	if _, err := svc.SetWater("w1", clean, "rest"); err != nil {
		t.Fatalf("SetWater: %v", err)
	}

	// A tick may already have been queued with the old reading; wait for the new one.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		m := readMessage(t, conn)
		if len(m.Data.Sessions) == 1 && m.Data.Sessions[0].Result.OverallScore == 100 {
			return
		}
	}
	t.Error("no broadcast carried the updated reading")
}

func TestHub_CancelContextClosesConnections(t *testing.T) {
	wsURL, hub, cancel := startHub(t, newService(t))

	conn := dial(t, wsURL)
	readMessage(t, conn)
	time.Sleep(10 * time.Millisecond)

	cancel()

	time.Sleep(50 * time.Millisecond)
	if n := hub.Count(); n != 0 {
		t.Errorf("Count after cancel: got %d, want 0", n)
	}
}

func TestHub_ClientChurnDuringBroadcast(t *testing.T) {
	svc := newService(t)
	for i := 0; i < 300; i++ {
		if _, err := svc.CreateSession("", types.LabWater); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	hub := wsHub.New(svc, nil, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv := httptest.NewServer(hub)
	defer srv.Close()
	go hub.Run(ctx)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	stop := time.Now().Add(300 * time.Millisecond)

	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(stop) {
				conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
				if err != nil {
					continue
				}
				conn.Close()
			}
		}()
	}
	wg.Wait()

	// The hub must still be serving after the churn.
	conn := dial(t, wsURL)
	if m := readMessage(t, conn); len(m.Data.Sessions) != 300 {
		t.Errorf("sessions: got %d, want 300", len(m.Data.Sessions))
	}
}

func TestHub_NonWebSocketRequest_Returns400(t *testing.T) {
	hub := wsHub.New(newService(t), nil, testInterval)
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeHTTP))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", resp.StatusCode)
	}
}
