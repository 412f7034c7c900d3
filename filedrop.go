package webview

// FileDropKind discriminates file-drag gestures reported over the webview.
type FileDropKind int

const (
	// FileDropHovered means files are being dragged over the webview.
	FileDropHovered FileDropKind = iota
	// FileDropDropped means files were released over the webview.
	FileDropDropped
	// FileDropCancelled means the drag left the webview or was aborted.
	FileDropCancelled
)

// FileDropEvent describes one file-drag gesture. Paths is empty for
// FileDropCancelled.
type FileDropEvent struct {
	Kind  FileDropKind
	Paths []string
}

// FileDropHandler receives file-drop events. Returning true suppresses the
// OS default drop behavior for the event.
type FileDropHandler func(FileDropEvent) bool
