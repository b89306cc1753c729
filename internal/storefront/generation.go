package storefront

import "sync/atomic"

// Generation hands out request tokens so that a response can tell whether a
// newer request has been issued since.
type Generation struct {
	n atomic.Uint64
}

// Next starts a new request and returns its token
func (g *Generation) Next() uint64 {
	return g.n.Add(1)
}

// Current reports whether token belongs to the latest request
func (g *Generation) Current(token uint64) bool {
	return g.n.Load() == token
}
