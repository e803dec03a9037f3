package datafeed

import "fmt"

// Constructor builds a Feed from its configuration.
type Constructor func(cfg Config) (Feed, error)

// constructors maps feed names to constructors. Registration happens at
// wiring time; no synchronization, matching the single-threaded usage
// assumption of the rest of the module.
var constructors = map[string]Constructor{}

// Register makes a feed constructor available under name. Registering
// the same name twice replaces the earlier constructor.
func Register(name string, ctor Constructor) {
	constructors[name] = ctor
}

func openFeed(cfg Config) (Feed, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("no datafeed configured")
	}
	ctor, ok := constructors[cfg.Name]
	if !ok {
		return nil, fmt.Errorf("unknown datafeed %q", cfg.Name)
	}
	feed, err := ctor(cfg)
	if err != nil {
		return nil, fmt.Errorf("open datafeed %q: %w", cfg.Name, err)
	}
	return feed, nil
}
