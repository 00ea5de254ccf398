package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DualHalfTrend/internal/cursor"
	"DualHalfTrend/internal/model"
)

var barTime = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func testNotifier(url string) *TelegramNotifier {
	n := NewTelegramNotifier("TOKEN", "42", "")
	n.BaseURL = url
	n.RetryBase = time.Millisecond
	return n
}

func TestSend(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	require.NoError(t, testNotifier(srv.URL).Send(context.Background(), "<b>hi</b>"))
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "<b>hi</b>", got["text"])
	assert.Equal(t, "HTML", got["parse_mode"])
}

func TestSendWithRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, `{"ok":false}`, http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n := testNotifier(srv.URL)
	require.NoError(t, n.SendWithRetry(context.Background(), "x", 3))
	assert.EqualValues(t, 3, calls.Load())

	calls.Store(-10)
	err := RetryingSender{TelegramNotifier: n, MaxRetries: 1}.Send(context.Background(), "x")
	assert.ErrorContains(t, err, "all 2 retries exhausted")
	assert.ErrorContains(t, err, "status 429")
}

func TestSendWithRetryCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := testNotifier(srv.URL)
	n.RetryBase = time.Hour
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, n.SendWithRetry(ctx, "x", 5), context.DeadlineExceeded)
}

func TestFormatSignals(t *testing.T) {
	events := []model.SignalEvent{
		{Kind: model.SignalExitShort, Symbol: "BTC-USD", Interval: "1h", BarTime: barTime, Close: 101.25,
			FastTrend: model.Up, SlowTrend: model.Up, FastLine: model.Some(99), SlowLine: model.None()},
		{Kind: model.SignalEnterLong, Symbol: "BTC-USD", Interval: "1h", BarTime: barTime, Close: 101.25},
	}
	msg := FormatSignals(events)
	assert.Contains(t, msg, "<b>BTC-USD</b> 1h | 2025-03-01 10:00 UTC")
	assert.Contains(t, msg, "EXIT SHORT")
	assert.Contains(t, msg, "ENTER LONG")
	assert.Contains(t, msg, "Close: 101.2500")
	assert.Contains(t, msg, "Fast: up @ 99.0000")
	assert.Contains(t, msg, "Slow: up @ n/a")
	assert.Less(t, strings.Index(msg, "EXIT SHORT"), strings.Index(msg, "ENTER LONG"))

	assert.Empty(t, FormatSignals(nil))
}

func TestFormatStatus(t *testing.T) {
	msg := FormatStatus(nil, barTime)
	assert.Contains(t, msg, "No bars evaluated yet")

	msg = FormatStatus([]cursor.Entry{{
		Symbol: "ETH-USD", Interval: "4h", LastBar: barTime, LastClose: 2000,
		FastTrend: model.Down, SlowTrend: model.Up, FastLine: model.Some(2010), SlowLine: model.Some(1900), Signals: 3,
	}}, barTime.Add(90*time.Minute))
	assert.Contains(t, msg, "<b>ETH-USD</b> 4h")
	assert.Contains(t, msg, "(1h30m0s ago)")
	assert.Contains(t, msg, "Fast: down @ 2010.0000 | Slow: up @ 1900.0000")
	assert.Contains(t, msg, "Signals sent: 3")
}

func TestFormatRecent(t *testing.T) {
	assert.Equal(t, "No signals recorded.", FormatRecent(nil))
	msg := FormatRecent([]model.SignalEvent{{Kind: model.SignalEnterShort, Symbol: "X", BarTime: barTime, Close: 5}})
	assert.Contains(t, msg, "03-01 10:00 X ENTER_SHORT @ 5.0000")
}

func TestCommands(t *testing.T) {
	c := Commands{Status: func() string { return "status!" }}
	assert.Equal(t, "status!", c.Handle("/status"))
	assert.Equal(t, "status!", c.Handle("/status@halftrend_bot extra"))
	assert.Equal(t, helpText, c.Handle("/help"))
	assert.Empty(t, c.Handle("/signals"), "no recent source configured")
	assert.Empty(t, c.Handle("hello"))
	assert.Empty(t, c.Handle("   "))
}

func TestStartPolling(t *testing.T) {
	var polls atomic.Int32
	replies := make(chan string, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/botTOKEN/getUpdates":
			if polls.Add(1) == 1 {
				assert.Equal(t, "0", r.URL.Query().Get("offset"))
				_, _ = w.Write([]byte(`{"ok":true,"result":[
{"update_id":7,"message":{"text":"/status","chat":{"id":99}}},
{"update_id":8,"message":{"text":" /status ","chat":{"id":42}}}]}`))
				return
			}
			assert.Equal(t, "9", r.URL.Query().Get("offset"))
			select {
			case <-r.Context().Done():
			case <-time.After(20 * time.Millisecond):
			}
			_, _ = w.Write([]byte(`{"ok":true,"result":[]}`))
		case "/botTOKEN/sendMessage":
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			replies <- body["text"]
			_, _ = w.Write([]byte(`{"ok":true}`))
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		testNotifier(srv.URL).StartPolling(ctx, Commands{Status: func() string { return "all good" }}.Handle)
	}()

	select {
	case reply := <-replies:
		assert.Equal(t, "all good", reply)
	case <-time.After(5 * time.Second):
		t.Fatal("no reply sent")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("polling did not stop")
	}
	assert.Empty(t, replies, "unknown chat must not be answered")
}
