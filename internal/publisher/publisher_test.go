package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/ironsheep/ball-info/internal/detection"
)

var testTime = time.Date(2024, 3, 9, 14, 30, 0, 0, time.UTC)

func TestNewMessage_Truncates(t *testing.T) {
	dets := []detection.Detection{
		{Color: "green", X: 50.9, Y: 12.2, Radius: 20.99, CentroidX: 49, CentroidY: 12},
		{Color: "blue", X: 3, Y: 4, Radius: 5},
	}

	msg := NewMessage(7, testTime, dets)
	assert.Equal(t, uint64(7), msg.Seq)
	assert.Equal(t, testTime, msg.Time)
	assert.Equal(t, []BallInfo{
		{Color: "green", X: 50, Y: 12, Radius: 20},
		{Color: "blue", X: 3, Y: 4, Radius: 5},
	}, msg.Balls)
}

func TestNewMessage_EmptyEncodesAsArray(t *testing.T) {
	data, err := json.Marshal(NewMessage(1, testTime, nil))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"balls":[]`)
}

func TestJSONLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewJSONLines(&buf)

	require.NoError(t, p.Publish(context.Background(), NewMessage(1, testTime, nil)))
	require.NoError(t, p.Publish(context.Background(), Message{
		Seq: 2, Time: testTime, Balls: []BallInfo{{Color: "yellow", X: 1, Y: 2, Radius: 11}},
	}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.JSONEq(t,
		`{"seq":2,"time":"2024-03-09T14:30:00Z","balls":[{"color":"yellow","x":1,"y":2,"radius":11}]}`,
		lines[1])
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestJSONLines_WriteError(t *testing.T) {
	err := NewJSONLines(failingWriter{}).Publish(context.Background(), Message{})
	assert.ErrorContains(t, err, "disk full")
}

func TestMulti(t *testing.T) {
	var got []string
	record := func(name string, err error) Publisher {
		return Func(func(_ context.Context, msg Message) error {
			got = append(got, name)
			return err
		})
	}

	m := Multi{record("a", nil), record("b", errors.New("b failed")), record("c", errors.New("c failed"))}
	err := m.Publish(context.Background(), Message{})

	assert.Equal(t, []string{"a", "b", "c"}, got, "every publisher runs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b failed")
	assert.Contains(t, err.Error(), "c failed")

	assert.NoError(t, Multi{}.Publish(context.Background(), Message{}))
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + TopicPath
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	typ, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, typ)
	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHub_PublishToSubscribers(t *testing.T) {
	hub := NewHub(zap.NewNop())
	srv := httptest.NewServer(hub.Router(detection.DefaultColorTable()))
	defer srv.Close()
	defer hub.Close()

	a := dial(t, srv)
	b := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Clients() == 2 }, 5*time.Second, 10*time.Millisecond)

	msg := Message{Seq: 3, Time: testTime, Balls: []BallInfo{{Color: "purple", X: 10, Y: 20, Radius: 30}}}
	require.NoError(t, hub.Publish(context.Background(), msg))

	assert.Equal(t, msg, readMessage(t, a))
	assert.Equal(t, msg, readMessage(t, b))

	sent, dropped := hub.Stats()
	assert.Equal(t, uint64(2), sent)
	assert.Zero(t, dropped)
}

func TestHub_NewSubscriberGetsLatest(t *testing.T) {
	hub := NewHub(zap.NewNop())
	srv := httptest.NewServer(hub.Router(detection.DefaultColorTable()))
	defer srv.Close()
	defer hub.Close()

	require.NoError(t, hub.Publish(context.Background(), Message{Seq: 1, Time: testTime, Balls: []BallInfo{}}))
	require.NoError(t, hub.Publish(context.Background(), Message{Seq: 2, Time: testTime, Balls: []BallInfo{}}))

	conn := dial(t, srv)
	assert.Equal(t, uint64(2), readMessage(t, conn).Seq)
}

func TestHub_DropsForSlowSubscriber(t *testing.T) {
	hub := NewHub(zaptest.NewLogger(t))
	slow := &hubClient{send: make(chan []byte, 1)}
	require.True(t, hub.register(slow))

	for i := 0; i < 3; i++ {
		require.NoError(t, hub.Publish(context.Background(), Message{Seq: uint64(i)}))
	}

	sent, dropped := hub.Stats()
	assert.Equal(t, uint64(1), sent)
	assert.Equal(t, uint64(2), dropped)

	hub.unregister(slow)
	assert.Zero(t, hub.Clients())
}

func TestHub_Close(t *testing.T) {
	hub := NewHub(zap.NewNop())
	srv := httptest.NewServer(hub.Router(detection.DefaultColorTable()))
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Close())
	assert.Zero(t, hub.Clients())
	assert.Error(t, hub.Publish(context.Background(), Message{}))

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func TestHub_HTTPEndpoints(t *testing.T) {
	hub := NewHub(zap.NewNop())
	srv := httptest.NewServer(hub.Router(detection.DefaultColorTable()))
	defer srv.Close()
	defer hub.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var health Health
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	resp.Body.Close()
	assert.Equal(t, Health{}, health)

	resp, err = http.Get(srv.URL + "/latest")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	require.NoError(t, hub.Publish(context.Background(), Message{Seq: 9, Time: testTime, Balls: []BallInfo{}}))
	resp, err = http.Get(srv.URL + "/latest")
	require.NoError(t, err)
	var latest Message
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&latest))
	resp.Body.Close()
	assert.Equal(t, uint64(9), latest.Seq)

	resp, err = http.Get(srv.URL + "/classes")
	require.NoError(t, err)
	var classes detection.ColorTable
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&classes))
	resp.Body.Close()
	assert.Equal(t, detection.DefaultColorTable(), classes)

	resp, err = http.Post(srv.URL+"/healthz", "text/plain", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHub_HealthzCountsSubscribers(t *testing.T) {
	hub := NewHub(zap.NewNop())
	srv := httptest.NewServer(hub.Router(detection.DefaultColorTable()))
	defer srv.Close()
	defer hub.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Publish(context.Background(), Message{Seq: 1, Time: testTime, Balls: []BallInfo{}}))
	assert.Equal(t, uint64(1), readMessage(t, conn).Seq)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var health Health
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, Health{Clients: 1, Sent: 1, Dropped: 0}, health)
}
