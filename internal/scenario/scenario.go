// Package scenario loads and runs YAML-scripted bus workloads.
//
// A scenario declares named channels and a cast of fibers (producers,
// consumers, broadcasters, closers) that exercise them. Running one is the
// executable demonstration of the bus: the script decides who blocks on
// whom, the report says what actually moved.
package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Role names what a scripted fiber does.
type Role string

const (
	RoleProduce   Role = "produce"
	RoleConsume   Role = "consume"
	RoleBroadcast Role = "broadcast"
	RoleClose     Role = "close"
)

// ChannelSpec declares one bus channel. A nil capacity means "use the
// configured default"; an explicit 0 is legal and permanently blocking.
type ChannelSpec struct {
	Name     string `yaml:"name"`
	Capacity *int   `yaml:"capacity,omitempty"`
}

// FiberSpec declares one scripted fiber.
type FiberSpec struct {
	Name    string `yaml:"name"`
	Role    Role   `yaml:"role"`
	Channel string `yaml:"channel,omitempty"` // unused for broadcast
	Count   int    `yaml:"count"`             // messages moved; yields before a close
	Start   uint32 `yaml:"start,omitempty"`   // first payload value
	Batch   int    `yaml:"batch,omitempty"`   // >0 switches to SendMany/RecvMany
}

// Scenario is one complete workload script.
type Scenario struct {
	Name     string        `yaml:"name"`
	Channels []ChannelSpec `yaml:"channels"`
	Fibers   []FiberSpec   `yaml:"fibers"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}

	var scn Scenario
	if err := yaml.Unmarshal(data, &scn); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if err := scn.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &scn, nil
}

// Validate checks the script for internal consistency.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("missing name")
	}
	if len(s.Channels) == 0 {
		return fmt.Errorf("no channels declared")
	}

	channels := make(map[string]bool, len(s.Channels))
	for _, c := range s.Channels {
		if c.Name == "" {
			return fmt.Errorf("channel with empty name")
		}
		if channels[c.Name] {
			return fmt.Errorf("duplicate channel %q", c.Name)
		}
		if c.Capacity != nil && *c.Capacity < 0 {
			return fmt.Errorf("channel %q: negative capacity", c.Name)
		}
		channels[c.Name] = true
	}

	if len(s.Fibers) == 0 {
		return fmt.Errorf("no fibers declared")
	}
	for _, f := range s.Fibers {
		if f.Name == "" {
			return fmt.Errorf("fiber with empty name")
		}
		switch f.Role {
		case RoleProduce, RoleConsume, RoleClose:
			if !channels[f.Channel] {
				return fmt.Errorf("fiber %q: unknown channel %q", f.Name, f.Channel)
			}
		case RoleBroadcast:
			if f.Channel != "" {
				return fmt.Errorf("fiber %q: broadcast takes no channel", f.Name)
			}
		default:
			return fmt.Errorf("fiber %q: unknown role %q", f.Name, f.Role)
		}
		if f.Role != RoleClose && f.Count < 1 {
			return fmt.Errorf("fiber %q: count must be >= 1", f.Name)
		}
		if f.Count < 0 {
			return fmt.Errorf("fiber %q: negative count", f.Name)
		}
		if f.Batch < 0 {
			return fmt.Errorf("fiber %q: negative batch", f.Name)
		}
	}
	return nil
}
