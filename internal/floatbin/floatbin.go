// Package floatbin decodes the flat binary payload files a workflow bundle
// ships next to its description. A payload has no header: it is a raw
// concatenation of IEEE-754 single-precision floats whose count is implied
// by the file size.
//
// Byte order is deliberately the machine's native order. The format embeds
// no byte-order marker and assumes producer and consumer agree; adding a
// silent conversion here could change numeric results for archives moved
// across platforms, so none is performed.
package floatbin

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
)

// ElementWidth is the size in bytes of one payload element.
const ElementWidth = 4

// ErrMisalignedSize reports a payload whose byte length is not a whole
// multiple of ElementWidth. Such a file cannot be a valid float array and is
// treated as fatally malformed.
var ErrMisalignedSize = errors.New("payload size is not a multiple of the float element width")

// ReadFile reads the whole file at path and reinterprets its bytes as a
// contiguous sequence of float32 values in native byte order. The returned
// slice length is the file size divided by ElementWidth.
func ReadFile(path string) ([]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read float payload: %w", err)
	}
	return Decode(data)
}

// Decode converts a raw payload to its float32 elements. It fails with
// ErrMisalignedSize when the input length is not a multiple of ElementWidth.
func Decode(data []byte) ([]float32, error) {
	if len(data)%ElementWidth != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrMisalignedSize, len(data))
	}
	out := make([]float32, len(data)/ElementWidth)
	for i := range out {
		out[i] = math.Float32frombits(binary.NativeEndian.Uint32(data[i*ElementWidth:]))
	}
	return out, nil
}
