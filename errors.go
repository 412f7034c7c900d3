package webview

import "strings"

// Kind categorizes errors raised by the embedding and bridging layer.
type Kind string

const (
	// KindInitialization is fatal: environment, controller or navigation
	// setup failed and the webview is unusable.
	KindInitialization Kind = "initialization"
	// KindScriptRegistration covers a single injected script failing to
	// register; siblings are unaffected.
	KindScriptRegistration Kind = "script_registration"
	// KindMessageParse covers a posted message that is not valid JSON or
	// not a recognized message shape.
	KindMessageParse Kind = "message_parse"
	// KindHandler covers errors returned by the host RPC handler.
	KindHandler Kind = "handler"
	// KindResourceResolution covers custom-protocol resolver failures.
	KindResourceResolution Kind = "resource_resolution"
	// KindUnsupported marks a requested capability the backend lacks.
	KindUnsupported Kind = "unsupported"
)

// Error is the structured error type used throughout the package.
type Error struct {
	Kind   Kind
	Detail string
	Cause  error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(string(e.Kind))
	b.WriteByte(']')
	if e.Detail != "" {
		b.WriteByte(' ')
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

func initError(detail string, cause error) *Error {
	return &Error{Kind: KindInitialization, Detail: detail, Cause: cause}
}

func unsupportedError(detail string) *Error {
	return &Error{Kind: KindUnsupported, Detail: detail}
}

func parseError(cause error) *Error {
	return &Error{Kind: KindMessageParse, Detail: "invalid posted message", Cause: cause}
}

func resourceError(uri string, cause error) *Error {
	return &Error{Kind: KindResourceResolution, Detail: "load " + uri, Cause: cause}
}
