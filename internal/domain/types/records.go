package types

// EncryptedRecord is a payload sealed for a set of recipients and signed by
// its sender.
type EncryptedRecord struct {
	Ciphertext    []byte    `json:"ciphertext"`
	Authenticator []byte    `json:"authenticator"`
	Recipients    []Address `json:"recipients"`
}

// RecordState tracks a chain record through validation.
type RecordState uint8

const (
	// RecordPending is a record that has been built but not yet validated.
	RecordPending RecordState = iota
	// RecordAppended is a record that passed validation and is linked.
	RecordAppended
)

// String returns the state name.
func (s RecordState) String() string {
	switch s {
	case RecordPending:
		return "pending"
	case RecordAppended:
		return "appended"
	default:
		return "unknown"
	}
}

// ChainRecord is one entry of a ledger chain.
type ChainRecord struct {
	Address             Address         `json:"address"`
	Link                string          `json:"link,omitempty"`
	PreviousFingerprint Fingerprint     `json:"previousFingerprint"`
	Payload             EncryptedRecord `json:"encryptedPayload"`
	State               RecordState     `json:"-"`
}

// ChainSnapshot is the persisted form of a chain.
type ChainSnapshot struct {
	RootAddress Address       `json:"rootAddress"`
	Records     []ChainRecord `json:"records"`
}
