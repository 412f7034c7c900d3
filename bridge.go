package webview

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Handler processes messages posted from embedded script code. It receives
// the message's method name and raw JSON params and returns a JSON-encodable
// result or an error. For messages carrying an id the outcome is delivered
// back to the embedded runtime; for notifications errors are only logged.
type Handler func(method string, params json.RawMessage) (any, error)

// rpcVersion identifies the wire protocol spoken by the bootstrap script
// and the reply scripts. Bump it together with bootstrapTemplate.
const rpcVersion = "1.0"

// bootstrapTemplate is the bridge bootstrap script. %s is the backend's
// native message-posting primitive (Capabilities.PostExpression). It
// establishes window.external.invoke, which forwards any string to the
// native primitive unmodified, and the window.external.rpc continuation
// table that reply scripts resolve by id.
const bootstrapTemplate = `window.external=window.external||{};` +
	`window.external.invoke=function(s){%s(s);};` +
	`window.external.rpc={` +
	`version:"` + rpcVersion + `",` +
	`_id:0,` +
	`_promises:{},` +
	`call:function(method,params){` +
	`var id=String(++this._id);var rpc=this;` +
	`var p=new Promise(function(resolve,reject){rpc._promises[id]={resolve:resolve,reject:reject};});` +
	`window.external.invoke(JSON.stringify({id:id,method:method,params:params===undefined?null:params}));` +
	`return p;},` +
	`notify:function(method,params){` +
	`window.external.invoke(JSON.stringify({method:method,params:params===undefined?null:params}));},` +
	`_result:function(id,value){var p=this._promises[id];if(p){delete this._promises[id];p.resolve(value);}},` +
	`_error:function(id,value){var p=this._promises[id];if(p){delete this._promises[id];p.reject(value);}}` +
	`};`

func bootstrapScript(postExpression string) string {
	return fmt.Sprintf(bootstrapTemplate, postExpression)
}

// rpcMessage is the parsed form of a posted message: a notification when
// ID is absent, a request expecting a correlated reply when present.
type rpcMessage struct {
	ID     json.RawMessage `json:"id,omitempty"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// bridge receives raw strings posted from embedded script code, dispatches
// them to the host handler and re-injects replies through the engine cell.
type bridge struct {
	handler Handler
	cell    *engineCell
}

func newBridge(handler Handler, cell *engineCell) *bridge {
	return &bridge{handler: handler, cell: cell}
}

// onMessage processes one posted message. It never panics and never takes
// the bridge down: malformed messages are logged and discarded.
func (b *bridge) onMessage(raw string) {
	var msg rpcMessage
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		Logger().Warn("discarding posted message", zap.Error(parseError(err)))
		return
	}
	if msg.Method == "" {
		Logger().Warn("discarding posted message",
			zap.Error(parseError(errors.New("missing method"))))
		return
	}

	result, err := b.handler(msg.Method, msg.Params)

	if msg.ID == nil {
		// Notification: no reply, errors are only observable in the log.
		if err != nil {
			Logger().Warn("notification handler failed",
				zap.String("method", msg.Method),
				zap.Error(&Error{Kind: KindHandler, Detail: msg.Method, Cause: err}),
			)
		}
		return
	}

	script := replyScript(msg.ID, result, err)
	// An empty cell can only happen here if the engine died after the
	// request was posted; the reply is dropped, matching the cell policy.
	if err := b.cell.evaluate(script); err != nil {
		Logger().Warn("reply injection failed",
			zap.String("method", msg.Method),
			zap.Error(err),
		)
	}
}

// replyScript renders the script that resolves or rejects the pending
// promise registered under id in the embedded runtime.
func replyScript(id json.RawMessage, result any, handlerErr error) string {
	if handlerErr == nil {
		payload, err := json.Marshal(result)
		if err == nil {
			return fmt.Sprintf("window.external.rpc._result(%s,%s)", id, payload)
		}
		handlerErr = err
	}
	payload, _ := json.Marshal(handlerErr.Error())
	return fmt.Sprintf("window.external.rpc._error(%s,%s)", id, payload)
}
