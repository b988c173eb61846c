package clearing

import (
	"github.com/kilianp07/meritorder/core/factory"
)

// Mechanism names registered by default.
const (
	MechanismPayAsClear = "pay_as_clear"
	MechanismPayAsBid   = "pay_as_bid"
)

var mechanisms = factory.NewRegistry[Clearer]()

// RegisterMechanism adds a clearing mechanism factory identified by name.
func RegisterMechanism(name string, f factory.Factory[Clearer]) error {
	return mechanisms.Register(name, f)
}

// NewMechanism creates a Clearer from the provided configuration.
func NewMechanism(cfg factory.ModuleConfig) (Clearer, error) {
	return mechanisms.Create(cfg)
}

// Mechanisms returns the registered mechanism names.
func Mechanisms() []string {
	return mechanisms.Names()
}

type mechanismConf struct {
	TieBreak string `json:"tie_break"`
}

func init() {
	_ = RegisterMechanism(MechanismPayAsClear, func(conf map[string]any) (Clearer, error) {
		var c mechanismConf
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		tb, err := NewTieBreaker(c.TieBreak)
		if err != nil {
			return nil, err
		}
		eng := NewPayAsClear()
		eng.TieBreak = tb
		return eng, nil
	})
	_ = RegisterMechanism(MechanismPayAsBid, func(conf map[string]any) (Clearer, error) {
		var c mechanismConf
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		tb, err := NewTieBreaker(c.TieBreak)
		if err != nil {
			return nil, err
		}
		eng := NewPayAsBid()
		eng.TieBreak = tb
		return eng, nil
	})
}
