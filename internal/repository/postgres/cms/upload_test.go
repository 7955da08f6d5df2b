package cms

import (
	"testing"

	"github.com/RoaringBitmap/roaring"
)

func TestReceivedRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   *roaring.Bitmap
		want []uint32
	}{
		{"nil", nil, []uint32{}},
		{"empty", roaring.New(), []uint32{}},
		{"sparse", roaring.BitmapOf(0, 7, 4096, 70000), []uint32{0, 7, 4096, 70000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := encodeReceived(tt.in)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			got, err := decodeReceived(data)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if arr := got.ToArray(); len(arr) != len(tt.want) {
				t.Errorf("decoded %v, want %v", arr, tt.want)
			} else {
				for i := range arr {
					if arr[i] != tt.want[i] {
						t.Errorf("decoded %v, want %v", arr, tt.want)
						break
					}
				}
			}
		})
	}
}

func TestDecodeReceivedNullColumn(t *testing.T) {
	got, err := decodeReceived(nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.IsEmpty() {
		t.Errorf("NULL decoded to %v", got.ToArray())
	}
}

func TestDecodeReceivedRejectsGarbage(t *testing.T) {
	if _, err := decodeReceived([]byte{0xde, 0xad}); err == nil {
		t.Error("expected an error for a corrupt bitmap")
	}
}
