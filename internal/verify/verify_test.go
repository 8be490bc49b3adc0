package verify

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/azle-dev/azle/internal/errors"
)

// Minimal valid module with no exports.
var minimalWasm = []byte{
	0x00, 0x61, 0x73, 0x6d, // magic
	0x01, 0x00, 0x00, 0x00, // version
}

// Module exporting "add" as a function.
var addWasm = []byte{
	0x00, 0x61, 0x73, 0x6d, // magic
	0x01, 0x00, 0x00, 0x00, // version
	// Type section: (i32, i32) -> i32
	0x01, 0x07, 0x01, 0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7f,
	// Function section: func 0 uses type 0
	0x03, 0x02, 0x01, 0x00,
	// Export section: "add" -> func 0
	0x07, 0x07, 0x01, 0x03, 0x61, 0x64, 0x64, 0x00, 0x00,
	// Code section: local.get 0 + local.get 1 = i32.add
	0x0a, 0x09, 0x01, 0x07, 0x00, 0x20, 0x00, 0x20, 0x01, 0x6a, 0x0b,
}

// Module importing ic0.msg_reply and exporting "canister_query get" and
// "canister_update inc".
var canisterWasm = []byte{
	0x00, 0x61, 0x73, 0x6d, // magic
	0x01, 0x00, 0x00, 0x00, // version
	// Type section: () -> ()
	0x01, 0x04, 0x01, 0x60, 0x00, 0x00,
	// Import section: "ic0" "msg_reply" func type 0
	0x02, 0x11, 0x01,
	0x03, 0x69, 0x63, 0x30,
	0x09, 0x6d, 0x73, 0x67, 0x5f, 0x72, 0x65, 0x70, 0x6c, 0x79,
	0x00, 0x00,
	// Function section: two funcs of type 0
	0x03, 0x03, 0x02, 0x00, 0x00,
	// Export section
	0x07, 0x2c, 0x02,
	// "canister_query get" -> func 1
	0x12,
	0x63, 0x61, 0x6e, 0x69, 0x73, 0x74, 0x65, 0x72, 0x5f,
	0x71, 0x75, 0x65, 0x72, 0x79, 0x20, 0x67, 0x65, 0x74,
	0x00, 0x01,
	// "canister_update inc" -> func 2
	0x13,
	0x63, 0x61, 0x6e, 0x69, 0x73, 0x74, 0x65, 0x72, 0x5f,
	0x75, 0x70, 0x64, 0x61, 0x74, 0x65, 0x20, 0x69, 0x6e, 0x63,
	0x00, 0x02,
	// Code section: two bodies calling msg_reply
	0x0a, 0x0b, 0x02,
	0x04, 0x00, 0x10, 0x00, 0x0b,
	0x04, 0x00, 0x10, 0x00, 0x0b,
}

func TestBytes_Minimal(t *testing.T) {
	report, err := Bytes(context.Background(), minimalWasm, 0)
	require.NoError(t, err)
	require.Empty(t, report.Exports)
	require.EqualValues(t, len(minimalWasm), report.Size)
	require.False(t, report.OverCeiling())
}

func TestBytes_Exports(t *testing.T) {
	report, err := Bytes(context.Background(), addWasm, 0)
	require.NoError(t, err)
	require.Equal(t, []string{"add"}, report.Exports)
	require.Empty(t, report.Methods())
}

func TestBytes_CanisterMethods(t *testing.T) {
	report, err := Bytes(context.Background(), canisterWasm, 0)
	require.NoError(t, err)
	require.Equal(t, []string{"canister_query get", "canister_update inc"}, report.Exports)
	require.Equal(t, []string{"get", "inc"}, report.Methods())
	require.Equal(t, []string{"ic0.msg_reply"}, report.Imports)
}

func TestBytes_SizeCeiling(t *testing.T) {
	report, err := Bytes(context.Background(), addWasm, 8)
	require.NoError(t, err)
	require.True(t, report.OverCeiling())

	report, err = Bytes(context.Background(), addWasm, int64(len(addWasm)))
	require.NoError(t, err)
	require.False(t, report.OverCeiling(), "a binary exactly at the ceiling fits")
}

func TestBytes_Invalid(t *testing.T) {
	_, err := Bytes(context.Background(), []byte{0x00, 0x61, 0x73, 0x6d}, 0)
	require.Error(t, err)
	require.True(t, errors.HasCode(err, errors.CodeVerify), "got %v", err)
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counter.wasm")
	require.NoError(t, os.WriteFile(path, addWasm, 0644))

	report, err := File(context.Background(), path, 0)
	require.NoError(t, err)
	require.Equal(t, path, report.Path)
	require.Equal(t, []string{"add"}, report.Exports)
}

func TestFile_Missing(t *testing.T) {
	_, err := File(context.Background(), filepath.Join(t.TempDir(), "missing.wasm"), 0)
	require.Error(t, err)
	require.True(t, errors.HasCode(err, errors.CodeVerify), "got %v", err)
}
