package grpcrelay

// publishRequest is the JSON body carried in Publish's BytesValue.
type publishRequest struct {
	Locator string `json:"locator"`
	Payload []byte `json:"payload"`
}
