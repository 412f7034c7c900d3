package webview

import (
	"net/http"
	"path"
	"strings"
)

// mimeFallback is served when neither content sniffing nor the URI
// extension identifies the payload.
const mimeFallback = "application/octet-stream"

// Extensions whose types content sniffing cannot distinguish from plain
// text or generic XML.
var mimeByExtension = map[string]string{
	".css":  "text/css",
	".js":   "text/javascript",
	".mjs":  "text/javascript",
	".json": "application/json",
	".svg":  "image/svg+xml",
	".wasm": "application/wasm",
}

// sniffMime resolves the MIME type for content served through a custom
// protocol, preferring the URI extension for types the content sniffer
// reports as text, and the sniffer for everything else.
func sniffMime(content []byte, uri string) string {
	if ext := strings.ToLower(path.Ext(stripQuery(uri))); ext != "" {
		if mime, ok := mimeByExtension[ext]; ok {
			return mime
		}
	}
	if len(content) == 0 {
		return mimeFallback
	}
	sniffed := http.DetectContentType(content)
	if i := strings.IndexByte(sniffed, ';'); i >= 0 {
		sniffed = sniffed[:i]
	}
	return sniffed
}

func stripQuery(uri string) string {
	if i := strings.IndexAny(uri, "?#"); i >= 0 {
		return uri[:i]
	}
	return uri
}
