package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/escoand/python-miio/pkg/status"
)

//go:embed devices.yaml
var deviceDefs []byte

// ErrPoweredOff is returned by setters other than set_power while the
// simulated device is off.
var ErrPoweredOff = errors.New("device is powered off")

// initialData holds the raw payload a simulated device starts with.
var initialData = map[string]status.Data{
	"AirPurifierStatus": {
		"power":          true,
		"model":          "zhimi.airpurifier.sim",
		"aqi":            12,
		"temp_dec":       215,
		"humidity":       41,
		"filter1_life":   87,
		"favorite_level": 5,
		"mode":           "Auto",
		"led":            true,
		"buzzer":         false,
	},
	"FanStatus": {
		"power":               true,
		"model":               "zhimi.fan.sim",
		"speed":               35,
		"oscillate":           false,
		"angle":               60,
		"delay_off_countdown": 0,
	},
}

// Simulator is an in-memory device. Its exported Set methods are the
// actuators resolved by setter name; FetchStatus returns a snapshot of
// its current payload.
type Simulator struct {
	mu    sync.Mutex
	typ   *status.Type
	state status.Data

	simCancel  context.CancelFunc
	simRunning bool
}

// NewSimulator creates a simulated device of the given status type.
// Keys of data override the built-in initial payload.
func NewSimulator(typ *status.Type, data status.Data) *Simulator {
	state := make(status.Data)
	for k, v := range initialData[typ.Name()] {
		state[k] = v
	}
	for k, v := range data {
		state[k] = v
	}
	return &Simulator{typ: typ, state: state}
}

// FetchStatus returns a snapshot of the current payload.
func (s *Simulator) FetchStatus(ctx context.Context) (*status.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data := make(status.Data, len(s.state))
	for k, v := range s.state {
		data[k] = v
	}
	return s.typ.New(data), nil
}

func (s *Simulator) set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if on, _ := s.state["power"].(bool); !on && key != "power" {
		return fmt.Errorf("%w: cannot change %s", ErrPoweredOff, key)
	}
	s.state[key] = value
	return nil
}

// SetPower turns the device on or off.
func (s *Simulator) SetPower(on bool) error { return s.set("power", on) }

// SetFavoriteLevel sets the purifier's favorite fan level.
func (s *Simulator) SetFavoriteLevel(ctx context.Context, level int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.set("favorite_level", level)
}

// SetMode sets the purifier's operation mode.
func (s *Simulator) SetMode(mode string) error { return s.set("mode", mode) }

// SetLed turns the display LED on or off.
func (s *Simulator) SetLed(on bool) error { return s.set("led", on) }

// SetBuzzer turns the buzzer on or off.
func (s *Simulator) SetBuzzer(on bool) error { return s.set("buzzer", on) }

// SetSpeed sets the fan speed in percent.
func (s *Simulator) SetSpeed(speed int) error { return s.set("speed", speed) }

// SetOscillate turns oscillation on or off.
func (s *Simulator) SetOscillate(on bool) error { return s.set("oscillate", on) }

// SetAngle sets the oscillation angle in degrees.
func (s *Simulator) SetAngle(angle int) error { return s.set("angle", angle) }

// Tick advances the simulated sensors by one step.
func (s *Simulator) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if on, _ := s.state["power"].(bool); !on {
		return
	}
	drift := func(key string, delta, lo, hi int) {
		v, ok := s.state[key].(int)
		if !ok {
			return
		}
		v += rand.IntN(2*delta+1) - delta
		s.state[key] = min(max(v, lo), hi)
	}
	drift("aqi", 3, 0, 500)
	drift("temp_dec", 2, 100, 350)
	drift("humidity", 1, 0, 100)

	if v, ok := s.state["delay_off_countdown"].(int); ok && v > 0 {
		s.state["delay_off_countdown"] = v - 1
	}
}

// Start begins periodic sensor updates.
func (s *Simulator) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.simRunning {
		return
	}
	var ctx context.Context
	ctx, s.simCancel = context.WithCancel(context.Background())
	s.simRunning = true
	go s.run(ctx, 5*time.Second)
	log.Println("[SIM] Simulation started")
}

// Stop ends periodic sensor updates.
func (s *Simulator) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.simRunning {
		return
	}
	s.simCancel()
	s.simRunning = false
	log.Println("[SIM] Simulation stopped")
}

// Running reports whether periodic updates are active.
func (s *Simulator) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.simRunning
}

func (s *Simulator) run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}
