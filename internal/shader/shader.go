// Package shader loads pre-compiled SPIR-V bytecode from disk.
package shader

import (
	"os"

	"github.com/cockroachdb/errors"
)

// Magic is the first word of every SPIR-V module.
const Magic uint32 = 0x07230203

// ErrMalformed is returned for files that cannot be SPIR-V.
var ErrMalformed = errors.New("malformed SPIR-V")

// Load reads the file at path and returns its contents as SPIR-V words.
func Load(path string) ([]uint32, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open shader file %s", path)
	}

	code, err := Decode(b)
	if err != nil {
		return nil, errors.Wrapf(err, "shader file %s", path)
	}
	return code, nil
}

// Decode converts a little-endian byte stream into 32-bit words.
func Decode(b []byte) ([]uint32, error) {
	if len(b) == 0 {
		return nil, errors.Mark(errors.New("empty bytecode"), ErrMalformed)
	}
	if len(b)%4 != 0 {
		return nil, errors.Mark(errors.Newf("bytecode length %d is not a multiple of 4", len(b)), ErrMalformed)
	}

	byteCode := make([]uint32, len(b)/4)
	for i := 0; i < len(byteCode); i++ {
		byteIndex := i * 4
		byteCode[i] = 0
		byteCode[i] |= uint32(b[byteIndex])
		byteCode[i] |= uint32(b[byteIndex+1]) << 8
		byteCode[i] |= uint32(b[byteIndex+2]) << 16
		byteCode[i] |= uint32(b[byteIndex+3]) << 24
	}

	if byteCode[0] != Magic {
		return nil, errors.Mark(errors.Newf("bad magic number %#08x", byteCode[0]), ErrMalformed)
	}

	return byteCode, nil
}
