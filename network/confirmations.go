package network

// DefaultConfirmationDepth applies to networks without an override.
const DefaultConfirmationDepth uint64 = 1

// Confirmations maps networks to the confirmation depth a deployment must reach.
type Confirmations struct {
	overrides map[NetworkID]uint64
}

// NewConfirmations copies overrides into an immutable table. Zero values are ignored.
func NewConfirmations(overrides map[NetworkID]uint64) Confirmations {
	c := Confirmations{overrides: make(map[NetworkID]uint64, len(overrides))}
	for id, depth := range overrides {
		if depth > 0 {
			c.overrides[id] = depth
		}
	}

	return c
}

// DefaultConfirmations returns the overrides for the public test networks. Local networks wait
// for inclusion only.
func DefaultConfirmations() Confirmations {
	return NewConfirmations(map[NetworkID]uint64{
		Goerli:  6,
		Mumbai:  6,
		Rinkeby: 6,
	})
}

// For returns the override for id, or DefaultConfirmationDepth.
func (c Confirmations) For(id NetworkID) uint64 {
	if depth, ok := c.overrides[id]; ok {
		return depth
	}

	return DefaultConfirmationDepth
}

// Override returns the configured override for id, if any.
func (c Confirmations) Override(id NetworkID) (uint64, bool) {
	depth, ok := c.overrides[id]

	return depth, ok
}
