package catalog

import (
	"errors"
	"testing"
)

func TestEncodeDecodeSnapshot(t *testing.T) {
	want := testSnapshot()

	data, err := EncodeSnapshot(want)
	if err != nil {
		t.Fatalf("EncodeSnapshot() error = %v", err)
	}

	got, err := DecodeSnapshot(data)
	if err != nil {
		t.Fatalf("DecodeSnapshot() error = %v", err)
	}

	if !got.LoadedAt.Equal(want.LoadedAt) {
		t.Errorf("LoadedAt = %v, want %v", got.LoadedAt, want.LoadedAt)
	}
	if len(got.Brands) != len(want.Brands) {
		t.Fatalf("brands len = %d, want %d", len(got.Brands), len(want.Brands))
	}
	if got.Brands[0].Name != "Patagonia" || got.Brands[0].ValueAlignments[0].ValueID != "climate" {
		t.Errorf("brand 0 = %+v", got.Brands[0])
	}
	if p := got.Places[0].Point; p == nil || p.Lat != 40.72 {
		t.Errorf("place point = %+v", p)
	}
	if loc := got.Businesses[0].Locations[0]; !loc.Primary || loc.Coordinates == nil {
		t.Errorf("business location = %+v", loc)
	}
	if got.RankLists["labor"].Oppose[0] != "Exxon" {
		t.Errorf("rank lists = %+v", got.RankLists)
	}
}

func TestDecodeSnapshot_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"garbage", []byte{0xff, 0x00, 0x13}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeSnapshot(tt.data); !errors.Is(err, ErrInvalidSnapshot) {
				t.Errorf("DecodeSnapshot() error = %v, want ErrInvalidSnapshot", err)
			}
		})
	}
}

func TestDecodeSnapshot_VersionMismatch(t *testing.T) {
	body, err := encMode.Marshal(testSnapshot())
	if err != nil {
		t.Fatal(err)
	}
	data, err := encMode.Marshal(envelope{Version: snapshotVersion + 1, Snapshot: body})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := DecodeSnapshot(data); !errors.Is(err, ErrInvalidSnapshot) {
		t.Errorf("DecodeSnapshot() error = %v, want ErrInvalidSnapshot", err)
	}
}
