// Command libparty2 builds the party two client as a C shared library:
//
//	go build -buildmode=c-shared -o libparty2.so ./cmd/libparty2
//
// Every exported call returns a newly allocated C string holding a JSON
// envelope. The caller owns it and must release it exactly once with
// free_char.
package main

/*
#include <stdlib.h>
*/
import "C"

import (
	"unsafe"

	"github.com/chain5j/mpc-party2/ffi"
)

// goString maps a nil pointer to "", which every entry point rejects as an
// input error where the argument is required.
func goString(s *C.char) string {
	if s == nil {
		return ""
	}
	return C.GoString(s)
}

//export get_client_master_key
func get_client_master_key(endpoint, authToken *C.char) *C.char {
	return C.CString(ffi.GetClientMasterKey(goString(endpoint), goString(authToken)))
}

//export key_derive
func key_derive(masterKey *C.char, xPos, yPos C.int) *C.char {
	return C.CString(ffi.KeyDerive(goString(masterKey), int32(xPos), int32(yPos)))
}

//export get_public_share_key
func get_public_share_key(party2Public *C.char) *C.char {
	return C.CString(ffi.GetPublicShareKey(goString(party2Public)))
}

//export get_public_share_key_with_derive
func get_public_share_key_with_derive(masterKey *C.char, xPos, yPos C.int) *C.char {
	return C.CString(ffi.GetPublicShareKeyWithDerive(goString(masterKey), int32(xPos), int32(yPos)))
}

//export sign_message
func sign_message(endpoint, authToken, messageHex, masterKey *C.char, xPos, yPos C.int, id *C.char) *C.char {
	return C.CString(ffi.SignMessage(
		goString(endpoint),
		goString(authToken),
		goString(messageHex),
		goString(masterKey),
		int32(xPos),
		int32(yPos),
		goString(id),
	))
}

//export free_char
func free_char(s *C.char) {
	if s == nil {
		return
	}
	C.free(unsafe.Pointer(s))
}

func main() {}
