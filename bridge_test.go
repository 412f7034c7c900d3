package webview

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestBootstrapScriptEmbedsPostPrimitive(t *testing.T) {
	js := bootstrapScript("window.chrome.webview.postMessage")

	if !strings.Contains(js, "window.chrome.webview.postMessage(s)") {
		t.Fatalf("bootstrap does not forward to the post primitive: %s", js)
	}
	if !strings.Contains(js, `version:"`+rpcVersion+`"`) {
		t.Fatal("bootstrap missing protocol version")
	}
	for _, fn := range []string{"window.external.invoke", "_result", "_error", "call:", "notify:"} {
		if !strings.Contains(js, fn) {
			t.Fatalf("bootstrap missing %q", fn)
		}
	}
}

func TestReplyScript(t *testing.T) {
	id := json.RawMessage(`"7"`)

	got := replyScript(id, map[string]any{"ping": "pong"}, nil)
	if want := `window.external.rpc._result("7",{"ping":"pong"})`; got != want {
		t.Fatalf("result script = %q, want %q", got, want)
	}

	got = replyScript(id, nil, errors.New("boom"))
	if want := `window.external.rpc._error("7","boom")`; got != want {
		t.Fatalf("error script = %q, want %q", got, want)
	}

	// Unmarshalable results degrade to an error reply, never a half-built
	// result.
	got = replyScript(id, make(chan int), nil)
	if !strings.HasPrefix(got, `window.external.rpc._error("7",`) {
		t.Fatalf("unmarshalable result produced %q", got)
	}
}

func newBridgeWebView(t *testing.T, handler Handler) (*fakeEngine, *WebView) {
	t.Helper()
	engine := newFakeEngine()
	w, err := NewWithEngine(engine, Options{Handler: handler})
	if err != nil {
		t.Fatalf("NewWithEngine error: %v", err)
	}
	if w.State() != StateReady {
		t.Fatalf("state = %v, want ready", w.State())
	}
	return engine, w
}

func TestBridgeRequestReply(t *testing.T) {
	var calls int
	engine, _ := newBridgeWebView(t, func(method string, params json.RawMessage) (any, error) {
		calls++
		if method != "ping" {
			t.Fatalf("method = %q, want ping", method)
		}
		if string(params) != "{}" {
			t.Fatalf("params = %s, want {}", params)
		}
		return map[string]any{"ping": "pong"}, nil
	})

	engine.ctrl.message(`{"id":"1","method":"ping","params":{}}`)

	if calls != 1 {
		t.Fatalf("handler called %d times, want 1", calls)
	}
	if len(engine.ctrl.executed) != 1 {
		t.Fatalf("%d reply scripts, want 1", len(engine.ctrl.executed))
	}
	if want := `window.external.rpc._result("1",{"ping":"pong"})`; engine.ctrl.executed[0] != want {
		t.Fatalf("reply = %q, want %q", engine.ctrl.executed[0], want)
	}
}

func TestBridgeHandlerErrorReply(t *testing.T) {
	engine, _ := newBridgeWebView(t, func(string, json.RawMessage) (any, error) {
		return nil, errors.New("no such method")
	})

	engine.ctrl.message(`{"id":"2","method":"missing","params":null}`)

	if len(engine.ctrl.executed) != 1 {
		t.Fatalf("%d reply scripts, want 1", len(engine.ctrl.executed))
	}
	if want := `window.external.rpc._error("2","no such method")`; engine.ctrl.executed[0] != want {
		t.Fatalf("reply = %q, want %q", engine.ctrl.executed[0], want)
	}
}

func TestBridgeNotificationNoReply(t *testing.T) {
	var calls int
	engine, _ := newBridgeWebView(t, func(string, json.RawMessage) (any, error) {
		calls++
		return "ignored", nil
	})

	engine.ctrl.message(`{"method":"log","params":{"line":"hi"}}`)

	if calls != 1 {
		t.Fatalf("handler called %d times, want 1", calls)
	}
	if len(engine.ctrl.executed) != 0 {
		t.Fatalf("notification produced %d reply scripts", len(engine.ctrl.executed))
	}
}

func TestBridgeNotificationHandlerErrorIsSwallowed(t *testing.T) {
	engine, _ := newBridgeWebView(t, func(string, json.RawMessage) (any, error) {
		return nil, errors.New("boom")
	})

	engine.ctrl.message(`{"method":"log"}`)

	if len(engine.ctrl.executed) != 0 {
		t.Fatal("notification error must not produce a reply")
	}
}

func TestBridgeMalformedMessage(t *testing.T) {
	var calls int
	engine, _ := newBridgeWebView(t, func(string, json.RawMessage) (any, error) {
		calls++
		return nil, nil
	})

	engine.ctrl.message(`{not json`)
	engine.ctrl.message(`"just a string"`)
	engine.ctrl.message(`{"params":{}}`) // no method

	if calls != 0 {
		t.Fatalf("handler called %d times for malformed input", calls)
	}

	// The bridge survives and handles the next well-formed message.
	engine.ctrl.message(`{"id":"3","method":"ping"}`)
	if calls != 1 {
		t.Fatalf("handler called %d times after recovery, want 1", calls)
	}
	if len(engine.ctrl.executed) != 1 {
		t.Fatalf("%d reply scripts after recovery, want 1", len(engine.ctrl.executed))
	}
}

func TestBridgeReplyDroppedAfterDestroy(t *testing.T) {
	engine, w := newBridgeWebView(t, func(string, json.RawMessage) (any, error) {
		return "late", nil
	})
	handler := engine.ctrl.message

	w.Destroy()
	handler(`{"id":"9","method":"ping"}`)

	if len(engine.ctrl.executed) != 0 {
		t.Fatal("reply injected into a torn-down engine")
	}
}
