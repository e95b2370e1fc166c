package auth0

import "time"

// SetClock replaces the resolver's clock
func (r *KeyResolver) SetClock(now func() time.Time) {
	r.now = now
}
