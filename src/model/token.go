package model

import "time"

// DiscoveredToken is a candidate mint picked up off the discovery stream.
type DiscoveredToken struct {
	Mint         string    `json:"mint"`
	Name         string    `json:"name,omitempty"`
	DiscoveredAt time.Time `json:"discovered_at"`
}
