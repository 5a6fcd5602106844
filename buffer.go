package turbo

import "fmt"

// MaxLength is the largest logical element count Alloc accepts. It equals
// the float capacity of a 2048x2048 RGBA float texture, the biggest square
// texture every supported device is assumed to handle.
const MaxLength = maxDimension * maxDimension * 4

// maxDimension is the largest planned texture dimension.
const maxDimension = 2048

// Buffer is a flat float32 array sized for a logical element count and
// backed by storage shaped to fit a square RGBA float texture.
//
// The caller writes inputs into Data() before Run and reads results from
// the slice Run returns. Run overwrites the backing storage in place, so
// all operations on one Buffer must be serialized by the caller.
// Independent Buffers may be used from independent goroutines.
type Buffer struct {
	length int
	dim    int
	data   []float32
}

// Alloc plans backing capacity for length elements and returns a Buffer.
//
// The backing storage holds dim*dim*4 floats where dim is the smallest
// power of two whose square texture fits length floats at 4 per texel.
// Capacity therefore always meets or exceeds length; the excess is never
// interpreted as output. Lengths above MaxLength fail with
// ErrCapacityExceeded, as do negative lengths. Length 0 is valid and
// yields a buffer whose Run result is empty.
func Alloc(length int) (*Buffer, error) {
	dim, err := planDimension(length)
	if err != nil {
		return nil, err
	}
	return &Buffer{
		length: length,
		dim:    dim,
		data:   make([]float32, dim*dim*4),
	}, nil
}

// planDimension maps a logical element count to a square texture
// dimension. Pure; Alloc is its only production caller.
func planDimension(length int) (int, error) {
	if length < 0 {
		return 0, fmt.Errorf("%w: negative length %d", ErrCapacityExceeded, length)
	}
	if length > MaxLength {
		return 0, fmt.Errorf("%w: %d > %d", ErrCapacityExceeded, length, MaxLength)
	}
	dim := 1
	for dim*dim*4 < length {
		dim *= 2
	}
	return dim, nil
}

// Len returns the logical element count, fixed at allocation.
func (b *Buffer) Len() int { return b.length }

// Cap returns the number of floats physically backing the buffer.
// Always a multiple of 4 and equal to Dim squared times 4.
func (b *Buffer) Cap() int { return len(b.data) }

// Dim returns the square texture dimension the buffer is shaped for.
// Always a power of two.
func (b *Buffer) Dim() int { return b.dim }

// Data returns the full backing storage. The caller populates inputs
// here; Run overwrites it during readback. The slice is the storage
// itself, not a copy.
func (b *Buffer) Data() []float32 { return b.data }
