// Package webview embeds a native operating-system web-rendering engine
// and bridges it to host code through injected scripts, a JSON message
// channel and custom-protocol interception. The native engine is driven
// through the Engine capability interface; platform backends live in the
// native_* files.
package webview

import "go.uber.org/zap"

// Options describe one webview instance. Everything except Window is
// optional; all fields are read once during construction and never again.
type Options struct {
	// Window is the native window handle the engine attaches to.
	Window uintptr

	// Bounds places the engine inside the host window.
	Bounds Bounds

	// Scripts run before any document content, in order, after the bridge
	// bootstrap, on every navigation.
	Scripts []string

	// URL is the initial navigation target.
	URL string

	// Protocol registers a custom URL scheme served by host code. At most
	// one per instance.
	Protocol *CustomProtocol

	// Handler receives messages posted from embedded script code.
	Handler Handler

	// FileDrop receives file-drag gestures over the webview.
	FileDrop FileDropHandler

	// Debug enables the engine's developer tools.
	Debug bool
}

// WebView is a live handle to an embedding webview. Its methods are safe
// to call from any goroutine except inside engine callbacks, including
// before the engine finishes its asynchronous initialization: calls
// issued before readiness succeed and do nothing.
type WebView struct {
	engine Engine
	cell   *engineCell
	driver *driver
}

// New builds a webview against the platform's default engine backend and
// begins asynchronous initialization. It returns once the initialization
// chain is wired; use State and Err to observe completion.
func New(opts Options) (*WebView, error) {
	return NewWithEngine(defaultEngine(), opts)
}

// NewWithEngine is New with an explicit engine backend.
func NewWithEngine(engine Engine, opts Options) (*WebView, error) {
	cell := &engineCell{}
	d := newDriver(engine, opts, cell)
	if err := d.start(); err != nil {
		return nil, err
	}
	return &WebView{engine: engine, cell: cell, driver: d}, nil
}

// EvaluateScript executes js in the current page. The call is handed to
// the UI thread and waits for the engine to run it. Before the engine is
// ready it returns nil without effect.
//
// Do not call it from inside an engine callback (the RPC handler, a
// protocol resolver, or a file-drop handler): those already run on the UI
// thread and the handoff would wait on itself. RPC handlers return their
// result instead of evaluating it.
func (w *WebView) EvaluateScript(js string) error {
	if _, ok := w.cell.get(); !ok {
		return nil
	}
	var err error
	w.engine.Dispatch(func() {
		err = w.cell.evaluate(js)
	})
	return err
}

// Resize applies new bounds. Before the engine is ready it returns nil
// without effect. The same callback restriction as EvaluateScript applies.
func (w *WebView) Resize(b Bounds) error {
	if _, ok := w.cell.get(); !ok {
		return nil
	}
	var err error
	w.engine.Dispatch(func() {
		err = w.cell.resize(b)
	})
	return err
}

// State reports the engine lifecycle state.
func (w *WebView) State() State {
	return w.driver.State()
}

// Err returns the error that ended initialization, or nil.
func (w *WebView) Err() error {
	return w.driver.Err()
}

// Destroy tears the engine down, detaching the bridge, interception and
// file-drop registrations with it. The webview is not reusable afterwards;
// pending EvaluateScript calls against it become no-ops. Destroying before
// the engine reaches Ready is allowed: a controller completing
// initialization later is refused and closed instead of deposited.
func (w *WebView) Destroy() {
	ctrl, ok := w.cell.clear()
	if !ok {
		return
	}
	w.engine.Dispatch(func() {
		if err := ctrl.Close(); err != nil {
			Logger().Warn("closing controller", zap.Error(err))
		}
	})
}
