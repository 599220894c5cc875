package transport

import (
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// DeliveryID returns the CIDv1 (raw + sha2-256) of payload.
func DeliveryID(payload []byte) (string, error) {
	sum, err := multihash.Sum(payload, multihash.SHA2_256, -1)
	if err != nil {
		return "", err
	}
	return cid.NewCidV1(cid.Raw, sum).String(), nil
}

// CheckDeliveryID verifies that payload hashes to id.
func CheckDeliveryID(id string, payload []byte) error {
	parsed, err := cid.Decode(id)
	if err != nil || !parsed.Defined() {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	got, err := DeliveryID(payload)
	if err != nil {
		return err
	}
	if got != parsed.String() {
		return ErrIDMismatch
	}
	return nil
}
