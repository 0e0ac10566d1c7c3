package longarray_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/Amulet-Team/Amulet-Level/longarray"
)

func TestDecodeDenseNibbles(t *testing.T) {
	encoded := []uint64{0x0123456789ABCDEF}
	got, err := longarray.Decode(encoded, 16, 4, true)
	require.NoError(t, err)

	want := []uint8{0xF, 0xE, 0xD, 0xC, 0xB, 0xA, 0x9, 0x8, 0x7, 0x6, 0x5, 0x4, 0x3, 0x2, 0x1, 0x0}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("decode mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodePadded(t *testing.T) {
	encoded := []uint64{0x7F}
	got, err := longarray.Decode(encoded, 7, 9, false)
	require.NoError(t, err)

	want := []uint16{127, 0, 0, 0, 0, 0, 0}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("decode mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTripDense(t *testing.T) {
	for _, bits := range []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 13, 16, 17, 31, 32, 33, 47, 64} {
		bits := bits
		t.Run("", func(t *testing.T) {
			size := 37
			maxVal := uint64(1)<<uint(bits) - 1
			if bits == 64 {
				maxVal = ^uint64(0)
			}
			values := make([]uint64, size)
			for i := range values {
				values[i] = uint64(i) & maxVal
			}
			encoded, usedBits, err := longarray.Encode(values, bits, true, 1)
			require.NoError(t, err)
			require.Equal(t, bits, usedBits)

			wantWords := longarray.WordCount(size, bits, true)
			require.Len(t, encoded, wantWords)

			decoded, err := longarray.DecodeUint64(encoded, size, bits, true)
			require.NoError(t, err)
			require.Equal(t, values, decoded)
		})
	}
}

func TestRoundTripPadded(t *testing.T) {
	for _, bits := range []int{1, 3, 5, 7, 9, 10, 16, 20, 33, 64} {
		bits := bits
		t.Run("", func(t *testing.T) {
			size := 23
			maxVal := uint64(1)<<uint(bits) - 1
			if bits == 64 {
				maxVal = ^uint64(0)
			}
			values := make([]uint64, size)
			for i := range values {
				values[i] = uint64(i*7) & maxVal
			}
			encoded, _, err := longarray.Encode(values, bits, false, 1)
			require.NoError(t, err)

			wantWords := longarray.WordCount(size, bits, false)
			require.Len(t, encoded, wantWords)

			decoded, err := longarray.DecodeUint64(encoded, size, bits, false)
			require.NoError(t, err)
			require.Equal(t, values, decoded)
		})
	}
}

func TestEncodeSize(t *testing.T) {
	cases := []struct {
		size, bits int
		dense      bool
		wantWords  int
	}{
		{16, 4, true, 1},
		{7, 9, false, 1},
		{4096, 8, true, 512},
		{4096, 8, false, 512},
		{4096, 5, false, 342}, // epw = 12, ceil(4096/12) = 342
	}

	for _, c := range cases {
		got := longarray.WordCount(c.size, c.bits, c.dense)
		require.Equal(t, c.wantWords, got, "size=%d bits=%d dense=%v", c.size, c.bits, c.dense)
	}
}

func TestEncodeComputesBits(t *testing.T) {
	values := []uint64{0, 1, 2, 3, 4, 5, 200}
	_, usedBits, err := longarray.Encode(values, 0, true, 1)
	require.NoError(t, err)
	require.Equal(t, 8, usedBits) // 200 needs 8 bits
}

func TestEncodeRespectsMinBits(t *testing.T) {
	values := []uint64{0, 1}
	_, usedBits, err := longarray.Encode(values, 0, true, 4)
	require.NoError(t, err)
	require.Equal(t, 4, usedBits)
}

func TestEncodeOverflowRejected(t *testing.T) {
	values := []uint64{16}
	_, _, err := longarray.Encode(values, 4, true, 1)
	require.Error(t, err)
}

func TestInvalidBitsPerEntry(t *testing.T) {
	_, err := longarray.DecodeUint64([]uint64{0}, 1, 0, true)
	require.Error(t, err)

	_, err = longarray.DecodeUint64([]uint64{0}, 1, 65, true)
	require.Error(t, err)
}

func TestDecodeTooFewWords(t *testing.T) {
	_, err := longarray.DecodeUint64(nil, 10, 4, true)
	require.Error(t, err)
}
