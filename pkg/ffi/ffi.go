// Package ffi provides C FFI exports so desktop hosts can run the paste
// and copy conversions in-process.
//
// Build with:
//
//	CGO_ENABLED=1 go build -buildmode=c-shared -o libmdclip.so ./pkg/ffi/
//
// All inputs/outputs are C strings. Complex data is JSON-serialized.
// The MdclipResult type provides both data and error fields.
// Callers must free results with mdclip_result_free.
package ffi

// #include "mdclip.h"
import "C"
import (
	"context"
	"unsafe"
)

// === Conversion ===

//export mdclip_convert
func mdclip_convert(html *C.char, optionsJSON *C.char) C.MdclipResult {
	conv, err := newConverter(goStringOrEmpty(optionsJSON))
	if err != nil {
		return makeError(err.Error())
	}
	out, err := convertJSON(context.Background(), conv, C.GoString(html))
	if err != nil {
		return makeError(err.Error())
	}
	return makeResult(out)
}

//export mdclip_text
func mdclip_text(html *C.char) C.MdclipResult {
	return makeResult(plainText(C.GoString(html)))
}

//export mdclip_render
func mdclip_render(markdown *C.char, mode *C.char) C.MdclipResult {
	out, err := render(C.GoString(markdown), goStringOrEmpty(mode))
	if err != nil {
		return makeError(err.Error())
	}
	return makeResult(out)
}

//export mdclip_format
func mdclip_format(markdown *C.char) C.MdclipResult {
	out, err := format(C.GoString(markdown))
	if err != nil {
		return makeError(err.Error())
	}
	return makeResult(out)
}

// === Engine handles ===

//export mdclip_engine_new
func mdclip_engine_new(optionsJSON *C.char) C.int {
	conv, err := newConverter(goStringOrEmpty(optionsJSON))
	if err != nil {
		return -1
	}
	return C.int(converters.add(conv))
}

//export mdclip_engine_convert
func mdclip_engine_convert(handle C.int, html *C.char) C.MdclipResult {
	conv, err := converters.get(int(handle))
	if err != nil {
		return makeError(err.Error())
	}
	out, err := convertJSON(context.Background(), conv, C.GoString(html))
	if err != nil {
		return makeError(err.Error())
	}
	return makeResult(out)
}

//export mdclip_engine_free
func mdclip_engine_free(handle C.int) {
	converters.remove(int(handle))
}

// === Memory Management ===

//export mdclip_result_free
func mdclip_result_free(result C.MdclipResult) {
	if result.data != nil {
		C.free(unsafe.Pointer(result.data))
	}
	if result.error != nil {
		C.free(unsafe.Pointer(result.error))
	}
}

// helpers

func goStringOrEmpty(s *C.char) string {
	if s == nil {
		return ""
	}
	return C.GoString(s)
}

func makeResult(data string) C.MdclipResult {
	cData := C.CString(data)
	return C.MdclipResult{
		data:  cData,
		len:   C.int(len(data)),
		error: nil,
	}
}

func makeError(msg string) C.MdclipResult {
	cErr := C.CString(msg)
	return C.MdclipResult{
		data:  nil,
		len:   0,
		error: cErr,
	}
}

// main is required for c-shared build mode but should not be called.
func main() {}
