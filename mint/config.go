// Package mint keeps a snapshot of the DePlebs sale fresh and submits the
// owner and public actions against it.
package mint

import (
	"math/big"
	"time"
)

// Sale constants.
const (
	DefaultCapacity     uint64 = 500
	DefaultPollInterval        = 5 * time.Second
)

// DefaultPrice is the cost of one unit: 0.001 ether.
func DefaultPrice() *big.Int {
	return big.NewInt(1_000_000_000_000_000)
}

// Config holds the sale parameters the controller enforces client-side.
type Config struct {
	Capacity     uint64
	Price        *big.Int
	PollInterval time.Duration
}

// DefaultConfig returns the DePlebs sale parameters.
func DefaultConfig() Config {
	return Config{
		Capacity:     DefaultCapacity,
		Price:        DefaultPrice(),
		PollInterval: DefaultPollInterval,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Capacity == 0 {
		c.Capacity = d.Capacity
	}
	if c.Price == nil {
		c.Price = d.Price
	}
	if c.PollInterval <= 0 {
		c.PollInterval = d.PollInterval
	}
	return c
}
