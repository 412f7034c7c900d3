package webview

// Bounds describes the webview's placement inside its host window, in
// physical pixels.
type Bounds struct {
	X      int32
	Y      int32
	Width  int32
	Height int32
}

// Settings are the engine defaults applied during configuration.
type Settings struct {
	StatusBar           bool
	DefaultContextMenus bool
	ZoomControl         bool
	DevTools            bool
}

// PermissionKind identifies a permission the engine asks the host about.
type PermissionKind int

const (
	PermissionUnknown PermissionKind = iota
	PermissionClipboardRead
)

// PermissionDecision is the host's answer to a permission request.
type PermissionDecision int

const (
	PermissionDefault PermissionDecision = iota
	PermissionAllow
	PermissionDeny
)

// Response carries the content served for an intercepted resource request.
type Response struct {
	Status      int
	Reason      string
	ContentType string
	Body        []byte
}

// Capabilities describes what a native engine backend can do. The driver
// consults it to pick between native and emulated paths; a capability that
// is neither supported nor emulatable fails construction instead of being
// silently ignored.
type Capabilities struct {
	// PostExpression is the JavaScript expression for the engine's native
	// message-posting primitive, e.g. "window.chrome.webview.postMessage".
	// The bridge bootstrap forwards posted strings to it unmodified.
	PostExpression string

	// CustomSchemes reports native registration support for non-standard
	// URL schemes.
	CustomSchemes bool

	// ResourceFilters reports support for intercepting requests on
	// standard-scheme prefixes, which enables the URL-rewriting workaround
	// for engines without CustomSchemes.
	ResourceFilters bool

	// FileDrop reports support for file-drop gesture callbacks.
	FileDrop bool
}

// Engine is the entry point to a native backend. Implementations own the
// asynchronous initialization chain; all completion callbacks are delivered
// on the UI thread.
type Engine interface {
	Capabilities() Capabilities

	// NewEnvironment starts building the engine's process environment.
	// done receives the environment or an error. An error return means the
	// build could not be started at all.
	NewEnvironment(done func(Environment, error)) error

	// Dispatch runs fn on the UI thread and waits for it to return. It
	// must only be called from outside the UI thread; engine callbacks
	// already run there and must not use it.
	Dispatch(fn func())
}

// Environment is the engine's process-wide state from which controllers
// are created.
type Environment interface {
	// NewController asynchronously attaches an engine instance to the
	// given native window. done receives the live controller or an error.
	NewController(window uintptr, done func(Controller, error)) error
}

// Controller is the native handle through which the host manipulates one
// engine instance. All methods must be called on the UI thread.
type Controller interface {
	ApplySettings(s Settings) error
	SetBounds(b Bounds) error

	// AddScriptToExecuteOnDocumentCreated registers js to run before any
	// document content, on every navigation. done reports the asynchronous
	// registration outcome; the error return reports submission failure.
	AddScriptToExecuteOnDocumentCreated(js string, done func(error)) error

	// OnWebMessageReceived installs the callback for strings posted from
	// embedded script code through the native post primitive.
	OnWebMessageReceived(fn func(raw string)) error

	// AddWebResourceRequestedFilter restricts interception to requests
	// matching the given prefix. Requires Capabilities.ResourceFilters.
	AddWebResourceRequestedFilter(prefix string) error

	// OnWebResourceRequested installs the interception callback. A nil
	// response or an error fails the intercepted request.
	OnWebResourceRequested(fn func(uri string) (*Response, error)) error

	// RegisterSchemeHandler registers a non-standard scheme natively.
	// Requires Capabilities.CustomSchemes.
	RegisterSchemeHandler(scheme string, fn func(uri string) (*Response, error)) error

	OnPermissionRequested(fn func(kind PermissionKind) PermissionDecision) error

	// OnFileDrop installs the file-drop callback. The callback's return
	// value suppresses the OS default drop behavior when true. Requires
	// Capabilities.FileDrop.
	OnFileDrop(fn FileDropHandler) error

	Navigate(url string) error
	ExecuteScript(js string) error

	// Close tears the instance down and detaches every callback installed
	// above. The controller is not reusable afterwards.
	Close() error
}
