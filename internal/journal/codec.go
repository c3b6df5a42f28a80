package journal

import (
	"errors"

	"github.com/fxamacker/cbor"

	"dao-governance/internal/governance"
)

// Encode serializes an event with canonical CBOR so the stored bytes are
// deterministic for a given event.
func Encode(event governance.Event) ([]byte, error) {
	data, err := cbor.Marshal(event, cbor.CanonicalEncOptions())
	if err != nil {
		return nil, errors.New("failed to encode the event: " + err.Error())
	}
	return data, nil
}

func Decode(data []byte) (governance.Event, error) {
	var event governance.Event
	if err := cbor.Unmarshal(data, &event); err != nil {
		return governance.Event{}, errors.New("failed to decode the event: " + err.Error())
	}
	return event, nil
}
