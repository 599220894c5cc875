package types

// Delivery is one published payload as seen by a subscriber.
type Delivery struct {
	ID      string `json:"id"`
	Locator string `json:"locator"`
	Payload []byte `json:"payload"`
}
