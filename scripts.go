package webview

import "go.uber.org/zap"

// scriptQueue holds the scripts that must run before any document content,
// in registration order. Element zero is always the bridge bootstrap.
type scriptQueue struct {
	scripts []string
}

func newScriptQueue(bootstrap string, user []string) *scriptQueue {
	q := &scriptQueue{scripts: make([]string, 0, len(user)+1)}
	q.scripts = append(q.scripts, bootstrap)
	q.scripts = append(q.scripts, user...)
	return q
}

// register submits every queued script to the controller, preserving order.
// A failed submission is fatal: scripts must be in place before navigation.
// A failed asynchronous completion is only logged; sibling registrations
// proceed.
func (q *scriptQueue) register(ctrl Controller) error {
	for i, js := range q.scripts {
		i := i
		err := ctrl.AddScriptToExecuteOnDocumentCreated(js, func(err error) {
			if err != nil {
				e := &Error{Kind: KindScriptRegistration, Detail: "register injected script", Cause: err}
				Logger().Warn("script registration failed",
					zap.Int("index", i),
					zap.Error(e),
				)
			}
		})
		if err != nil {
			return initError("submit injected script", err)
		}
	}
	return nil
}
