package strategy

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/futures/market"
)

// Strategy consumes closed bars in replay order and emits at most one signal
// per bar. Implementations keep their own state and must be resettable
// between runs.
type Strategy interface {
	Name() string
	Reset()

	// OnBar processes the next closed bar. A nil signal means no intent.
	OnBar(bar market.Bar) (*Signal, error)
}

var registry = make(map[string]func(Params) (Strategy, error))

// Params carries the free-form strategy settings from config.
type Params struct {
	Symbol   string
	Quantity float64
	Fast     int
	Slow     int
}

// Register makes a strategy constructor available to ByName.
func Register(name string, build func(Params) (Strategy, error)) {
	registry[strings.ToLower(name)] = build
}

// ByName builds a registered strategy.
func ByName(name string, p Params) (Strategy, error) {
	build, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (registered: %s)", name, strings.Join(Names(), ", "))
	}
	return build(p)
}

// Registered reports whether a strategy name is known.
func Registered(name string) bool {
	_, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Names lists registered strategy names.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	return out
}
