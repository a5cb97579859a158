package device

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/escoand/python-miio/pkg/descriptor"
	"github.com/escoand/python-miio/pkg/log"
	"github.com/escoand/python-miio/pkg/status"
)

// Controller errors.
var (
	ErrNoStatus = errors.New("fetcher returned no status")
)

// Fetcher obtains a fresh status snapshot, typically over the network.
type Fetcher interface {
	FetchStatus(ctx context.Context) (*status.Snapshot, error)
}

// FetchFunc adapts a function to the Fetcher interface.
type FetchFunc func(ctx context.Context) (*status.Snapshot, error)

// FetchStatus calls f(ctx).
func (f FetchFunc) FetchStatus(ctx context.Context) (*status.Snapshot, error) {
	return f(ctx)
}

// Capabilities is the result of one status fetch: the snapshot and its
// descriptors, with writable descriptors bound to the controller.
type Capabilities struct {
	Status   *status.Snapshot
	Sensors  map[string]*descriptor.Sensor
	Switches map[string]*descriptor.Switch
	Settings map[string]descriptor.Setting
}

// Writable returns the switch or setting for property, if any.
func (c *Capabilities) Writable(property string) (descriptor.Writable, bool) {
	if s, ok := c.Switches[property]; ok {
		return s, true
	}
	if s, ok := c.Settings[property]; ok {
		return s, true
	}
	return nil, false
}

// Controller exposes a device's capabilities through its current status.
// Every accessor performs exactly one fetch and derives fresh descriptors
// from it, so concurrent callers never share a view.
type Controller struct {
	id      string
	fetcher Fetcher
	logger  *slog.Logger
	trace   log.Logger

	mu        sync.RWMutex
	owner     any
	actuators map[string]descriptor.Setter
}

// NewController creates a controller that reads status through fetcher.
func NewController(fetcher Fetcher, cfg Config) *Controller {
	id := cfg.ID
	if id == "" {
		id = uuid.NewString()
	}
	return &Controller{
		id:        id,
		fetcher:   fetcher,
		logger:    cfg.Logger,
		trace:     cfg.Trace,
		owner:     cfg.Owner,
		actuators: make(map[string]descriptor.Setter),
	}
}

// ID returns the controller identifier.
func (c *Controller) ID() string {
	return c.id
}

// Attach registers or replaces the actuator for a setter name. Bound
// descriptors pick the change up on their next invocation.
func (c *Controller) Attach(name string, set descriptor.Setter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.actuators[name] = set
}

// Detach removes an attached actuator.
func (c *Controller) Detach(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.actuators, name)
}

// SetOwner replaces the object used for by-name method resolution.
func (c *Controller) SetOwner(owner any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.owner = owner
}

// ResolveSetter implements descriptor.Resolver. Attached actuators take
// precedence over methods of the owner.
func (c *Controller) ResolveSetter(name string) (descriptor.Setter, error) {
	return c.resolveSetter(name, "")
}

// typedResolver resolves setters for descriptors of one status type, so
// their trace events carry the type name.
type typedResolver struct {
	c          *Controller
	statusType string
}

func (r typedResolver) ResolveSetter(name string) (descriptor.Setter, error) {
	return r.c.resolveSetter(name, r.statusType)
}

func (c *Controller) resolveSetter(name, statusType string) (descriptor.Setter, error) {
	c.mu.RLock()
	set, ok := c.actuators[name]
	owner := c.owner
	c.mu.RUnlock()

	if !ok {
		var err error
		set, err = descriptor.MethodResolver{Target: owner}.ResolveSetter(name)
		if err != nil {
			c.traceError("setter", statusType, name, err)
			return nil, err
		}
	}

	return func(ctx context.Context, value any) error {
		start := time.Now()
		err := set(ctx, value)
		elapsed := time.Since(start)

		if err != nil {
			if c.logger != nil {
				c.logger.Debug("setter failed",
					"controller", c.id,
					"setter", name,
					"value", value,
					"error", err)
			}
			c.traceError("setter", statusType, name, err)
			return err
		}

		if c.logger != nil {
			c.logger.Debug("setter invoked",
				"controller", c.id,
				"setter", name,
				"value", value,
				"duration", elapsed)
		}
		if c.trace != nil {
			c.trace.Log(log.Event{
				Timestamp:    time.Now(),
				ControllerID: c.id,
				Category:     log.CategorySetter,
				StatusType:   statusType,
				Setter: &log.SetterEvent{
					SetterName: name,
					Value:      value,
					Duration:   elapsed,
				},
			})
		}
		return nil
	}, nil
}

// Status fetches the current status snapshot.
func (c *Controller) Status(ctx context.Context) (*status.Snapshot, error) {
	return c.fetch(ctx)
}

// Capabilities fetches the status once and returns it with all bound
// descriptors.
func (c *Controller) Capabilities(ctx context.Context) (*Capabilities, error) {
	snap, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}

	r := typedResolver{c: c, statusType: snap.Type().Name()}
	descs := snap.Descriptors()
	for name, d := range descs {
		descs[name] = descriptor.Bind(d, r)
	}

	return &Capabilities{
		Status:   snap,
		Sensors:  status.Sensors(descs),
		Switches: status.Switches(descs),
		Settings: status.Settings(descs),
	}, nil
}

// Sensors returns the sensors of the current status.
func (c *Controller) Sensors(ctx context.Context) (map[string]*descriptor.Sensor, error) {
	caps, err := c.Capabilities(ctx)
	if err != nil {
		return nil, err
	}
	return caps.Sensors, nil
}

// Switches returns the switches of the current status, bound to this
// controller.
func (c *Controller) Switches(ctx context.Context) (map[string]*descriptor.Switch, error) {
	caps, err := c.Capabilities(ctx)
	if err != nil {
		return nil, err
	}
	return caps.Switches, nil
}

// Settings returns the number and enum settings of the current status,
// bound to this controller.
func (c *Controller) Settings(ctx context.Context) (map[string]descriptor.Setting, error) {
	caps, err := c.Capabilities(ctx)
	if err != nil {
		return nil, err
	}
	return caps.Settings, nil
}

func (c *Controller) fetch(ctx context.Context) (*status.Snapshot, error) {
	start := time.Now()
	snap, err := c.fetcher.FetchStatus(ctx)
	elapsed := time.Since(start)

	if err == nil && snap == nil {
		err = ErrNoStatus
	}
	if err != nil {
		if c.logger != nil {
			c.logger.Debug("status fetch failed",
				"controller", c.id,
				"error", err)
		}
		c.traceError("fetch", "", "", err)
		return nil, fmt.Errorf("fetching status: %w", err)
	}

	if c.logger != nil {
		c.logger.Debug("status fetched",
			"controller", c.id,
			"type", snap.Type().Name(),
			"duration", elapsed)
	}
	if c.trace != nil {
		c.trace.Log(log.Event{
			Timestamp:    time.Now(),
			ControllerID: c.id,
			Category:     log.CategoryFetch,
			StatusType:   snap.Type().Name(),
			Fetch: &log.FetchEvent{
				Duration:   elapsed,
				Properties: len(snap.Type().Properties()),
				Payload:    snap.Data(),
			},
		})
	}
	return snap, nil
}

func (c *Controller) traceError(op, statusType, setterName string, err error) {
	if c.trace == nil {
		return
	}
	c.trace.Log(log.Event{
		Timestamp:    time.Now(),
		ControllerID: c.id,
		Category:     log.CategoryError,
		StatusType:   statusType,
		Error: &log.ErrorEventData{
			Operation:  op,
			Message:    err.Error(),
			SetterName: setterName,
		},
	})
}

// Compile-time interface satisfaction check.
var _ descriptor.Resolver = (*Controller)(nil)
