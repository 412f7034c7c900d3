package webview

import (
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// Resolver maps a custom-protocol URI (scheme included) to response bytes.
type Resolver func(uri string) ([]byte, error)

// CustomProtocol registers a non-standard URL scheme whose content is
// served by host code instead of the network. One registration per webview.
type CustomProtocol struct {
	// Scheme is the bare scheme name, without "://".
	Scheme   string
	Resolver Resolver
}

// interceptPrefix is the synthetic standard-scheme prefix used to smuggle
// custom-protocol requests through engines that can only filter standard
// schemes. "file://custom-protocol-foo/x" stands in for "foo://x".
const interceptPrefix = "file://custom-protocol-"

// protocolAdapter serves a single custom scheme against one controller,
// either through native scheme registration or through the resource
// interception workaround.
type protocolAdapter struct {
	scheme   string
	resolver Resolver

	// rewriting is true in workaround mode, where outbound navigation to
	// scheme:// must be rewritten to the synthetic prefix form.
	rewriting bool
}

func newProtocolAdapter(p *CustomProtocol) *protocolAdapter {
	return &protocolAdapter{scheme: p.Scheme, resolver: p.Resolver}
}

// attach wires the adapter to the controller, preferring the engine's
// native scheme support over the rewrite workaround. An engine with
// neither capability fails configuration outright.
func (a *protocolAdapter) attach(ctrl Controller, caps Capabilities) error {
	switch {
	case caps.CustomSchemes:
		return ctrl.RegisterSchemeHandler(a.scheme, a.serve)
	case caps.ResourceFilters:
		a.rewriting = true
		if err := ctrl.AddWebResourceRequestedFilter(interceptPrefix + a.scheme + "*"); err != nil {
			return err
		}
		return ctrl.OnWebResourceRequested(func(uri string) (*Response, error) {
			// Undo the workaround before handing the URI to the resolver.
			return a.serve(strings.Replace(uri, interceptPrefix+a.scheme, a.scheme+"://", 1))
		})
	default:
		return unsupportedError("custom protocol " + a.scheme + ": engine supports neither scheme registration nor resource interception")
	}
}

// serve resolves one request. Failures produce a generic load error and no
// partial response; the engine is never taken down by a bad resolver.
func (a *protocolAdapter) serve(uri string) (*Response, error) {
	content, err := a.resolver(uri)
	if err != nil {
		e := resourceError(uri, err)
		Logger().Warn("custom protocol resolution failed", zap.Error(e))
		return nil, e
	}
	return &Response{
		Status:      200,
		Reason:      "OK",
		ContentType: sniffMime(content, uri),
		Body:        content,
	}, nil
}

// rewriteNavigation maps an outbound navigation target onto the synthetic
// prefix form when the target uses the registered scheme and the adapter
// is in workaround mode, so the interception filter catches it.
func (a *protocolAdapter) rewriteNavigation(rawURL string) string {
	if !a.rewriting {
		return rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme != a.scheme {
		return rawURL
	}
	return strings.Replace(rawURL, a.scheme+"://", interceptPrefix+a.scheme, 1)
}
