// Package dependency wires core fiberbus services using go.uber.org/dig.
package dependency

import (
	"go.uber.org/dig"

	"github.com/fiberbus/fiberbus/internal/bus"
	"github.com/fiberbus/fiberbus/internal/config"
	"github.com/fiberbus/fiberbus/internal/monitor"
	"github.com/fiberbus/fiberbus/internal/scenario"
	"github.com/fiberbus/fiberbus/internal/sched"
)

// Container holds the resolved core service singletons.
// Callers use the typed getter methods; they never need to import dig directly.
type Container struct {
	msgBus *bus.Bus
	runner *scenario.Runner
	mon    *monitor.Service
}

func (c *Container) Bus() *bus.Bus             { return c.msgBus }
func (c *Container) Runner() *scenario.Runner  { return c.runner }
func (c *Container) Monitor() *monitor.Service { return c.mon }

// ScenarioPath is a named string type so dig can distinguish the scenario
// file path from plain strings.
type ScenarioPath string

// New builds and wires all core services from cfg. path overrides the
// configured scenario file when non-empty.
func New(cfg *config.Config, path ScenarioPath) (*Container, error) {
	d := dig.New()

	if err := d.Provide(func() *config.Config { return cfg }); err != nil {
		return nil, err
	}
	if err := d.Provide(func() ScenarioPath { return path }); err != nil {
		return nil, err
	}
	if err := d.Provide(loadScenario); err != nil {
		return nil, err
	}
	if err := d.Provide(sched.New); err != nil {
		return nil, err
	}
	if err := d.Provide(bus.New); err != nil {
		return nil, err
	}
	if err := d.Provide(newMonitor); err != nil {
		return nil, err
	}
	if err := d.Provide(newRunner); err != nil {
		return nil, err
	}

	var result *Container
	err := d.Invoke(func(b *bus.Bus, r *scenario.Runner, m *monitor.Service) {
		result = &Container{msgBus: b, runner: r, mon: m}
	})
	return result, err
}

func loadScenario(cfg *config.Config, path ScenarioPath) (*scenario.Scenario, error) {
	p := string(path)
	if p == "" {
		p = cfg.Scenario.Path
	}
	return scenario.Load(p)
}

// newMonitor returns a nil service when monitoring is disabled; callers
// treat nil as "no monitor".
func newMonitor(cfg *config.Config) (*monitor.Service, error) {
	if !cfg.Monitor.Enabled {
		return nil, nil
	}
	return monitor.New(cfg.Monitor.Schedule)
}

func newRunner(s *sched.Scheduler, b *bus.Bus, scn *scenario.Scenario, cfg *config.Config, m *monitor.Service) *scenario.Runner {
	var observe scenario.Observer
	if m != nil {
		observe = m.Publish
	}
	return scenario.NewRunner(s, b, scn, cfg.Bus.DefaultCapacity, observe)
}
