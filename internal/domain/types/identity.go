package types

// IdentitySummary is the shareable description of a local identity.
type IdentitySummary struct {
	Root        Address     `json:"root"`
	Fingerprint Fingerprint `json:"fingerprint"`
	// Environment is the extended public key of the node every role branch
	// hangs from. Anyone holding it can recompute role addresses offline.
	Environment string `json:"environment"`
}
