package webview

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"golang.design/x/mainthread"
)

// The native backend drives the "emberview" engine-host library, a thin C
// shim over the platform's web engine (WebView2 on Windows, WebKit
// elsewhere). The library is loaded at runtime and every operation goes
// through a resolved symbol; see native_unix.go and native_windows.go for
// the loaders.

var loadOnce sync.Once

// Resolved symbols from the engine-host library.
var (
	pEnvironmentCreate  uintptr
	pControllerCreate   uintptr
	pControllerSettings uintptr
	pControllerBounds   uintptr
	pAddScript          uintptr
	pOnMessage          uintptr
	pAddResourceFilter  uintptr
	pOnResource         uintptr
	pRegisterScheme     uintptr
	pOnPermission       uintptr
	pOnFileDrop         uintptr
	pNavigate           uintptr
	pExecuteScript      uintptr
	pClose              uintptr
	pResponseCreate     uintptr
)

// C-callable trampoline pointers, created by the platform loader.
var (
	envCreatedPtr  uintptr
	ctrlCreatedPtr uintptr
	scriptAddedPtr uintptr
	messagePtr     uintptr
	resourcePtr    uintptr
	permissionPtr  uintptr
	fileDropPtr    uintptr
)

// Callback registries. One-shot completions are keyed by a sequence id
// passed through the library as userdata; persistent callbacks are keyed
// by the controller handle and removed on Close.
var (
	nativeMu      sync.Mutex
	nativeSeq     uintptr
	envDone       = make(map[uintptr]func(Environment, error))
	ctrlDone      = make(map[uintptr]func(Controller, error))
	scriptDone    = make(map[uintptr]func(error))
	messageFns    = make(map[uintptr]func(string))
	resourceFns   = make(map[uintptr]func(string) (*Response, error))
	permissionFns = make(map[uintptr]func(PermissionKind) PermissionDecision)
	fileDropFns   = make(map[uintptr]FileDropHandler)
)

func nextSeq() uintptr {
	nativeMu.Lock()
	defer nativeMu.Unlock()
	nativeSeq++
	return nativeSeq
}

type nativeEngine struct {
	caps Capabilities
}

func (e *nativeEngine) Capabilities() Capabilities { return e.caps }

func (e *nativeEngine) NewEnvironment(done func(Environment, error)) error {
	id := nextSeq()
	nativeMu.Lock()
	envDone[id] = done
	nativeMu.Unlock()
	if rc := call(pEnvironmentCreate, envCreatedPtr, id); rc != 0 {
		nativeMu.Lock()
		delete(envDone, id)
		nativeMu.Unlock()
		return nativeError("environment_create", rc)
	}
	return nil
}

// Dispatch hands fn to the UI thread and waits. The engine-host library
// requires every call below to happen there; mainthread.Init must wrap the
// application's main function.
func (e *nativeEngine) Dispatch(fn func()) {
	mainthread.Call(fn)
}

type nativeEnvironment struct {
	handle uintptr
}

func (e *nativeEnvironment) NewController(window uintptr, done func(Controller, error)) error {
	id := nextSeq()
	nativeMu.Lock()
	ctrlDone[id] = done
	nativeMu.Unlock()
	if rc := call(pControllerCreate, e.handle, window, ctrlCreatedPtr, id); rc != 0 {
		nativeMu.Lock()
		delete(ctrlDone, id)
		nativeMu.Unlock()
		return nativeError("controller_create", rc)
	}
	return nil
}

type nativeController struct {
	handle uintptr
}

func (c *nativeController) ApplySettings(s Settings) error {
	rc := call(pControllerSettings, c.handle,
		boolToInt(s.StatusBar), boolToInt(s.DefaultContextMenus),
		boolToInt(s.ZoomControl), boolToInt(s.DevTools))
	if rc != 0 {
		return nativeError("controller_settings", rc)
	}
	return nil
}

func (c *nativeController) SetBounds(b Bounds) error {
	rc := call(pControllerBounds, c.handle,
		uintptr(uint32(b.X)), uintptr(uint32(b.Y)),
		uintptr(uint32(b.Width)), uintptr(uint32(b.Height)))
	if rc != 0 {
		return nativeError("controller_bounds", rc)
	}
	return nil
}

func (c *nativeController) AddScriptToExecuteOnDocumentCreated(js string, done func(error)) error {
	id := nextSeq()
	nativeMu.Lock()
	scriptDone[id] = done
	nativeMu.Unlock()
	b, ptr := goStringToCString(js)
	rc := call(pAddScript, c.handle, ptr, scriptAddedPtr, id)
	runtime.KeepAlive(b)
	if rc != 0 {
		nativeMu.Lock()
		delete(scriptDone, id)
		nativeMu.Unlock()
		return nativeError("add_script", rc)
	}
	return nil
}

func (c *nativeController) OnWebMessageReceived(fn func(raw string)) error {
	nativeMu.Lock()
	messageFns[c.handle] = fn
	nativeMu.Unlock()
	if rc := call(pOnMessage, c.handle, messagePtr, c.handle); rc != 0 {
		return nativeError("on_message", rc)
	}
	return nil
}

func (c *nativeController) AddWebResourceRequestedFilter(prefix string) error {
	b, ptr := goStringToCString(prefix)
	rc := call(pAddResourceFilter, c.handle, ptr)
	runtime.KeepAlive(b)
	if rc != 0 {
		return nativeError("add_resource_filter", rc)
	}
	return nil
}

func (c *nativeController) OnWebResourceRequested(fn func(uri string) (*Response, error)) error {
	nativeMu.Lock()
	resourceFns[c.handle] = fn
	nativeMu.Unlock()
	if rc := call(pOnResource, c.handle, resourcePtr, c.handle); rc != 0 {
		return nativeError("on_resource", rc)
	}
	return nil
}

func (c *nativeController) RegisterSchemeHandler(scheme string, fn func(uri string) (*Response, error)) error {
	nativeMu.Lock()
	resourceFns[c.handle] = fn
	nativeMu.Unlock()
	b, ptr := goStringToCString(scheme)
	rc := call(pRegisterScheme, c.handle, ptr, resourcePtr, c.handle)
	runtime.KeepAlive(b)
	if rc != 0 {
		return nativeError("register_scheme", rc)
	}
	return nil
}

func (c *nativeController) OnPermissionRequested(fn func(kind PermissionKind) PermissionDecision) error {
	nativeMu.Lock()
	permissionFns[c.handle] = fn
	nativeMu.Unlock()
	if rc := call(pOnPermission, c.handle, permissionPtr, c.handle); rc != 0 {
		return nativeError("on_permission", rc)
	}
	return nil
}

func (c *nativeController) OnFileDrop(fn FileDropHandler) error {
	nativeMu.Lock()
	fileDropFns[c.handle] = fn
	nativeMu.Unlock()
	if rc := call(pOnFileDrop, c.handle, fileDropPtr, c.handle); rc != 0 {
		return nativeError("on_file_drop", rc)
	}
	return nil
}

func (c *nativeController) Navigate(url string) error {
	b, ptr := goStringToCString(url)
	rc := call(pNavigate, c.handle, ptr)
	runtime.KeepAlive(b)
	if rc != 0 {
		return nativeError("navigate", rc)
	}
	return nil
}

func (c *nativeController) ExecuteScript(js string) error {
	b, ptr := goStringToCString(js)
	rc := call(pExecuteScript, c.handle, ptr)
	runtime.KeepAlive(b)
	if rc != 0 {
		return nativeError("execute_script", rc)
	}
	return nil
}

func (c *nativeController) Close() error {
	rc := call(pClose, c.handle)
	nativeMu.Lock()
	delete(messageFns, c.handle)
	delete(resourceFns, c.handle)
	delete(permissionFns, c.handle)
	delete(fileDropFns, c.handle)
	nativeMu.Unlock()
	if rc != 0 {
		return nativeError("close", rc)
	}
	return nil
}

//-------------------------------------------------------------------
// Trampolines invoked by the engine-host library on the UI thread.
//-------------------------------------------------------------------

func envCreatedTrampoline(userdata, env, errPtr uintptr) uintptr {
	nativeMu.Lock()
	done := envDone[userdata]
	delete(envDone, userdata)
	nativeMu.Unlock()
	if done == nil {
		return 0
	}
	if errPtr != 0 {
		done(nil, errors.New(cStringToGo(errPtr)))
	} else {
		done(&nativeEnvironment{handle: env}, nil)
	}
	return 0
}

func ctrlCreatedTrampoline(userdata, ctrl, errPtr uintptr) uintptr {
	nativeMu.Lock()
	done := ctrlDone[userdata]
	delete(ctrlDone, userdata)
	nativeMu.Unlock()
	if done == nil {
		return 0
	}
	if errPtr != 0 {
		done(nil, errors.New(cStringToGo(errPtr)))
	} else {
		done(&nativeController{handle: ctrl}, nil)
	}
	return 0
}

func scriptAddedTrampoline(userdata, errPtr uintptr) uintptr {
	nativeMu.Lock()
	done := scriptDone[userdata]
	delete(scriptDone, userdata)
	nativeMu.Unlock()
	if done == nil {
		return 0
	}
	if errPtr != 0 {
		done(errors.New(cStringToGo(errPtr)))
	} else {
		done(nil)
	}
	return 0
}

func messageTrampoline(userdata, msgPtr uintptr) uintptr {
	nativeMu.Lock()
	fn := messageFns[userdata]
	nativeMu.Unlock()
	if fn != nil {
		fn(cStringToGo(msgPtr))
	}
	return 0
}

// resourceTrampoline returns a native response handle, or 0 to fail the
// intercepted request.
func resourceTrampoline(userdata, uriPtr uintptr) uintptr {
	nativeMu.Lock()
	fn := resourceFns[userdata]
	nativeMu.Unlock()
	if fn == nil {
		return 0
	}
	resp, err := fn(cStringToGo(uriPtr))
	if err != nil || resp == nil {
		return 0
	}
	reason, reasonPtr := goStringToCString(resp.Reason)
	ct, ctPtr := goStringToCString(resp.ContentType)
	var bodyPtr uintptr
	if len(resp.Body) > 0 {
		bodyPtr = uintptr(unsafe.Pointer(&resp.Body[0]))
	}
	h := call(pResponseCreate, uintptr(resp.Status), reasonPtr, ctPtr, bodyPtr, uintptr(len(resp.Body)))
	runtime.KeepAlive(reason)
	runtime.KeepAlive(ct)
	runtime.KeepAlive(resp.Body)
	return h
}

func permissionTrampoline(userdata, kind uintptr) uintptr {
	nativeMu.Lock()
	fn := permissionFns[userdata]
	nativeMu.Unlock()
	if fn == nil {
		return uintptr(PermissionDefault)
	}
	return uintptr(fn(PermissionKind(kind)))
}

func fileDropTrampoline(userdata, kind, pathsPtr, count uintptr) uintptr {
	nativeMu.Lock()
	fn := fileDropFns[userdata]
	nativeMu.Unlock()
	if fn == nil {
		return 0
	}
	ev := FileDropEvent{
		Kind:  FileDropKind(kind),
		Paths: cStringArrayToGo(pathsPtr, int(count)),
	}
	return boolToInt(fn(ev))
}

//-------------------------------------------------------------------
// String marshalling for the no-cgo FFI boundary.
//-------------------------------------------------------------------

func boolToInt(b bool) uintptr {
	if b {
		return 1
	}
	return 0
}

func goStringToCString(s string) ([]byte, uintptr) {
	b := append([]byte(s), 0) // NUL-terminate
	return b, uintptr(unsafe.Pointer(&b[0]))
}

func cStringToGo(ptr uintptr) string {
	if ptr == 0 {
		return ""
	}
	var length int
	for *(*byte)(unsafe.Pointer(ptr + uintptr(length))) != 0 {
		length++
	}
	if length == 0 {
		return ""
	}
	buf := make([]byte, length)
	for i := 0; i < length; i++ {
		buf[i] = *(*byte)(unsafe.Pointer(ptr + uintptr(i)))
	}
	return string(buf)
}

func cStringArrayToGo(ptr uintptr, count int) []string {
	if ptr == 0 || count <= 0 {
		return nil
	}
	out := make([]string, 0, count)
	for i := 0; i < count; i++ {
		p := *(*uintptr)(unsafe.Pointer(ptr + uintptr(i)*unsafe.Sizeof(uintptr(0))))
		out = append(out, cStringToGo(p))
	}
	return out
}

func nativeError(op string, rc uintptr) error {
	return fmt.Errorf("emberview: %s failed (code %d)", op, rc)
}
