package catalog

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// ErrInvalidSnapshot is returned when cached bytes cannot be decoded.
var ErrInvalidSnapshot = errors.New("invalid snapshot encoding")

// snapshotVersion must be bumped whenever the Snapshot layout changes.
const snapshotVersion = 2

type envelope struct {
	Version  int             `cbor:"v"`
	Snapshot cbor.RawMessage `cbor:"s"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		panic(err)
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(err)
	}
}

// EncodeSnapshot encodes snap as versioned CBOR.
func EncodeSnapshot(snap *Snapshot) ([]byte, error) {
	body, err := encMode.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	data, err := encMode.Marshal(envelope{Version: snapshotVersion, Snapshot: body})
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot envelope: %w", err)
	}
	return data, nil
}

// DecodeSnapshot decodes bytes produced by EncodeSnapshot.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	if len(data) == 0 {
		return nil, ErrInvalidSnapshot
	}

	var env envelope
	if err := decMode.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if env.Version != snapshotVersion {
		return nil, fmt.Errorf("%w: version %d, want %d", ErrInvalidSnapshot, env.Version, snapshotVersion)
	}

	var snap Snapshot
	if err := decMode.Unmarshal(env.Snapshot, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	return &snap, nil
}
