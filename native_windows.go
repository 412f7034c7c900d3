package webview

import "syscall"

// defaultEngine returns the WebView2-backed engine host. WebView2 cannot
// register non-standard schemes, so custom protocols go through the
// resource-filter rewrite workaround.
func defaultEngine() Engine {
	load()
	return &nativeEngine{caps: Capabilities{
		PostExpression:  "window.chrome.webview.postMessage",
		ResourceFilters: true,
		FileDrop:        true,
	}}
}

func load() {
	loadOnce.Do(func() {
		libHandle, err := syscall.LoadLibrary("emberview.dll")
		if err != nil {
			panic("webview: failed to load engine host library: " + err.Error())
		}
		if libHandle == 0 {
			panic("webview: engine host library not loaded")
		}
		// Resolve all required symbols from the library
		pEnvironmentCreate = mustLoadSymbol(libHandle, "emberview_environment_create")
		pControllerCreate = mustLoadSymbol(libHandle, "emberview_controller_create")
		pControllerSettings = mustLoadSymbol(libHandle, "emberview_controller_settings")
		pControllerBounds = mustLoadSymbol(libHandle, "emberview_controller_bounds")
		pAddScript = mustLoadSymbol(libHandle, "emberview_add_script")
		pOnMessage = mustLoadSymbol(libHandle, "emberview_on_message")
		pAddResourceFilter = mustLoadSymbol(libHandle, "emberview_add_resource_filter")
		pOnResource = mustLoadSymbol(libHandle, "emberview_on_resource")
		pRegisterScheme = mustLoadSymbol(libHandle, "emberview_register_scheme")
		pOnPermission = mustLoadSymbol(libHandle, "emberview_on_permission")
		pOnFileDrop = mustLoadSymbol(libHandle, "emberview_on_file_drop")
		pNavigate = mustLoadSymbol(libHandle, "emberview_navigate")
		pExecuteScript = mustLoadSymbol(libHandle, "emberview_execute_script")
		pClose = mustLoadSymbol(libHandle, "emberview_close")
		pResponseCreate = mustLoadSymbol(libHandle, "emberview_response_create")

		// Create C-callable trampolines for the engine's callbacks
		envCreatedPtr = syscall.NewCallback(envCreatedTrampoline)
		ctrlCreatedPtr = syscall.NewCallback(ctrlCreatedTrampoline)
		scriptAddedPtr = syscall.NewCallback(scriptAddedTrampoline)
		messagePtr = syscall.NewCallback(messageTrampoline)
		resourcePtr = syscall.NewCallback(resourceTrampoline)
		permissionPtr = syscall.NewCallback(permissionTrampoline)
		fileDropPtr = syscall.NewCallback(fileDropTrampoline)
	})
}

// mustLoadSymbol looks up a symbol and panics if not found.
func mustLoadSymbol(lib syscall.Handle, name string) uintptr {
	ptr, err := syscall.GetProcAddress(lib, name)
	if err != nil {
		panic("webview: failed to load symbol " + name + ": " + err.Error())
	}
	if ptr == 0 {
		panic("webview: failed to load symbol " + name)
	}
	return ptr
}

func call(fn uintptr, args ...uintptr) uintptr {
	r1, _, _ := syscall.SyscallN(fn, args...)
	return r1
}
