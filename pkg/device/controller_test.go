package device

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/escoand/python-miio/pkg/descriptor"
	"github.com/escoand/python-miio/pkg/log"
	"github.com/escoand/python-miio/pkg/status"
)

type stubFetcher struct{ mock.Mock }

func (f *stubFetcher) FetchStatus(ctx context.Context) (*status.Snapshot, error) {
	ret := f.Called(ctx)
	var s *status.Snapshot
	if ret.Get(0) != nil {
		s = ret.Get(0).(*status.Snapshot)
	}
	return s, ret.Error(1)
}

type recordingTrace struct {
	mu     sync.Mutex
	events []log.Event
}

func (r *recordingTrace) Log(e log.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingTrace) byCategory(c log.Category) []log.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []log.Event
	for _, e := range r.events {
		if e.Category == c {
			out = append(out, e)
		}
	}
	return out
}

type fanMode int

const (
	fanSilent fanMode = iota
	fanStrong
)

func (m fanMode) String() string {
	if m == fanStrong {
		return "Strong"
	}
	return "Silent"
}

type purifier struct {
	mu    sync.Mutex
	calls map[string][]any
}

func (p *purifier) record(name string, v any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.calls == nil {
		p.calls = make(map[string][]any)
	}
	p.calls[name] = append(p.calls[name], v)
}

func (p *purifier) SetLevel(ctx context.Context, level int) error {
	p.record("set_level", level)
	return nil
}

func (p *purifier) SetMode(m fanMode) error {
	p.record("set_mode", m)
	return nil
}

func purifierType() *status.Type {
	return status.NewType("PurifierStatus", nil).
		MustDefine("temperature", status.Field("temp"),
			descriptor.SensorAnnotation("Temperature", descriptor.WithUnit("C"))).
		MustDefine("power", status.Field("power"),
			descriptor.SwitchAnnotation("Power", "set_power")).
		MustDefine("level", status.Field("level"),
			descriptor.SettingAnnotation("Level", "set_level",
				descriptor.WithMin(0), descriptor.WithMax(2), descriptor.WithStep(1))).
		MustDefine("mode", status.Field("mode"),
			descriptor.SettingAnnotation("Mode", "set_mode",
				descriptor.WithChoices(descriptor.ChoicesOf(fanSilent, fanStrong))))
}

func newPurifierSnapshot() *status.Snapshot {
	return purifierType().New(status.Data{
		"temp":  21.5,
		"power": true,
		"level": 1,
		"mode":  fanSilent,
	})
}

func TestControllerFetchesOncePerCall(t *testing.T) {
	fetcher := &stubFetcher{}
	fetcher.On("FetchStatus", mock.Anything).Return(newPurifierSnapshot(), nil)

	c := NewController(fetcher, DefaultConfig())
	ctx := context.Background()

	sensors, err := c.Sensors(ctx)
	require.NoError(t, err)
	assert.Len(t, sensors, 1)
	fetcher.AssertNumberOfCalls(t, "FetchStatus", 1)

	switches, err := c.Switches(ctx)
	require.NoError(t, err)
	assert.Len(t, switches, 1)
	fetcher.AssertNumberOfCalls(t, "FetchStatus", 2)

	settings, err := c.Settings(ctx)
	require.NoError(t, err)
	assert.Len(t, settings, 2)
	fetcher.AssertNumberOfCalls(t, "FetchStatus", 3)

	caps, err := c.Capabilities(ctx)
	require.NoError(t, err)
	assert.NotNil(t, caps.Status)
	assert.Len(t, caps.Sensors, 1)
	assert.Len(t, caps.Switches, 1)
	assert.Len(t, caps.Settings, 2)
	fetcher.AssertNumberOfCalls(t, "FetchStatus", 4)
}

func TestControllerNumberSettingReachesOwner(t *testing.T) {
	owner := &purifier{}
	fetcher := &stubFetcher{}
	fetcher.On("FetchStatus", mock.Anything).Return(newPurifierSnapshot(), nil)

	c := NewController(fetcher, Config{Owner: owner})
	settings, err := c.Settings(context.Background())
	require.NoError(t, err)

	level, ok := settings["level"].(*descriptor.NumberSetting)
	require.True(t, ok, "level should be a number setting")
	assert.Equal(t, 0.0, level.Min())
	assert.Equal(t, 2.0, level.Max())
	assert.Equal(t, 1.0, level.Step())

	require.NoError(t, level.Set(context.Background(), 1))
	assert.Equal(t, []any{1}, owner.calls["set_level"])
}

func TestControllerEnumSetting(t *testing.T) {
	owner := &purifier{}
	fetcher := &stubFetcher{}
	fetcher.On("FetchStatus", mock.Anything).Return(newPurifierSnapshot(), nil)

	c := NewController(fetcher, Config{Owner: owner})
	settings, err := c.Settings(context.Background())
	require.NoError(t, err)

	mode, ok := settings["mode"].(*descriptor.EnumSetting)
	require.True(t, ok, "mode should be an enum setting")
	assert.Len(t, mode.Choices(), 2)

	require.NoError(t, mode.Set(context.Background(), fanStrong))
	assert.Equal(t, []any{fanStrong}, owner.calls["set_mode"])
}

func TestControllerSwitchAttachedAfterDiscovery(t *testing.T) {
	fetcher := &stubFetcher{}
	fetcher.On("FetchStatus", mock.Anything).Return(newPurifierSnapshot(), nil)

	c := NewController(fetcher, DefaultConfig())
	switches, err := c.Switches(context.Background())
	require.NoError(t, err)

	power := switches["power"]
	require.NotNil(t, power)
	assert.Equal(t, "set_power", power.SetterName())

	err = power.Set(context.Background(), true)
	assert.ErrorIs(t, err, descriptor.ErrSetterNotFound)

	var got []any
	c.Attach("set_power", func(_ context.Context, v any) error {
		got = append(got, v)
		return nil
	})
	require.NoError(t, power.Set(context.Background(), false))
	assert.Equal(t, []any{false}, got)

	c.Detach("set_power")
	assert.ErrorIs(t, power.Set(context.Background(), true), descriptor.ErrSetterNotFound)
}

func TestControllerAttachedTakesPrecedence(t *testing.T) {
	owner := &purifier{}
	fetcher := &stubFetcher{}
	fetcher.On("FetchStatus", mock.Anything).Return(newPurifierSnapshot(), nil)

	c := NewController(fetcher, Config{Owner: owner})
	var attached int
	c.Attach("set_level", func(context.Context, any) error {
		attached++
		return nil
	})

	settings, err := c.Settings(context.Background())
	require.NoError(t, err)
	require.NoError(t, settings["level"].Set(context.Background(), 2))

	assert.Equal(t, 1, attached)
	assert.Empty(t, owner.calls["set_level"])
}

func TestControllerSetterErrorPropagates(t *testing.T) {
	errBusy := errors.New("device busy")
	trace := &recordingTrace{}
	fetcher := &stubFetcher{}
	fetcher.On("FetchStatus", mock.Anything).Return(newPurifierSnapshot(), nil)

	c := NewController(fetcher, Config{ID: "ctrl-1", Trace: trace})
	c.Attach("set_power", func(context.Context, any) error { return errBusy })

	switches, err := c.Switches(context.Background())
	require.NoError(t, err)
	err = switches["power"].Set(context.Background(), true)
	assert.ErrorIs(t, err, errBusy)

	errs := trace.byCategory(log.CategoryError)
	require.Len(t, errs, 1)
	assert.Equal(t, "ctrl-1", errs[0].ControllerID)
	assert.Equal(t, "PurifierStatus", errs[0].StatusType)
	assert.Equal(t, "setter", errs[0].Error.Operation)
	assert.Equal(t, "set_power", errs[0].Error.SetterName)
	assert.Equal(t, "device busy", errs[0].Error.Message)
}

func TestControllerFetchError(t *testing.T) {
	errTimeout := errors.New("timeout")
	trace := &recordingTrace{}
	fetcher := &stubFetcher{}
	fetcher.On("FetchStatus", mock.Anything).Return(nil, errTimeout).Once()
	fetcher.On("FetchStatus", mock.Anything).Return(nil, nil).Once()

	c := NewController(fetcher, Config{Trace: trace})

	_, err := c.Sensors(context.Background())
	assert.ErrorIs(t, err, errTimeout)

	_, err = c.Status(context.Background())
	assert.ErrorIs(t, err, ErrNoStatus)

	assert.Len(t, trace.byCategory(log.CategoryError), 2)
	assert.Empty(t, trace.byCategory(log.CategoryFetch))
	fetcher.AssertExpectations(t)
}

func TestControllerTracesFetchAndSetter(t *testing.T) {
	trace := &recordingTrace{}
	fetcher := &stubFetcher{}
	fetcher.On("FetchStatus", mock.Anything).Return(newPurifierSnapshot(), nil)

	c := NewController(fetcher, Config{Owner: &purifier{}, Trace: trace})
	assert.NotEmpty(t, c.ID(), "controller should get a generated ID")

	settings, err := c.Settings(context.Background())
	require.NoError(t, err)
	require.NoError(t, settings["level"].Set(context.Background(), 2))

	fetches := trace.byCategory(log.CategoryFetch)
	require.Len(t, fetches, 1)
	assert.Equal(t, "PurifierStatus", fetches[0].StatusType)
	assert.Equal(t, c.ID(), fetches[0].ControllerID)
	assert.Equal(t, 4, fetches[0].Fetch.Properties)
	assert.Equal(t, 1, fetches[0].Fetch.Payload["level"])

	setters := trace.byCategory(log.CategorySetter)
	require.Len(t, setters, 1)
	assert.Equal(t, "set_level", setters[0].Setter.SetterName)
	assert.Equal(t, "PurifierStatus", setters[0].StatusType)
	assert.Equal(t, 2, setters[0].Setter.Value)
}

func TestControllerFreshDescriptorsPerCall(t *testing.T) {
	fetcher := &stubFetcher{}
	fetcher.On("FetchStatus", mock.Anything).Return(newPurifierSnapshot(), nil)

	c := NewController(fetcher, DefaultConfig())
	first, err := c.Switches(context.Background())
	require.NoError(t, err)
	second, err := c.Switches(context.Background())
	require.NoError(t, err)

	assert.NotSame(t, first["power"], second["power"])
}

func TestControllerConcurrentAccess(t *testing.T) {
	fetcher := &stubFetcher{}
	fetcher.On("FetchStatus", mock.Anything).Return(newPurifierSnapshot(), nil)

	c := NewController(fetcher, Config{Owner: &purifier{}})

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers*2)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sensors, err := c.Sensors(context.Background())
			if err != nil {
				errs <- err
				return
			}
			if len(sensors) != 1 {
				errs <- errors.New("unexpected sensor count")
			}
			c.Attach("set_power", func(context.Context, any) error { return nil })
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
	fetcher.AssertNumberOfCalls(t, "FetchStatus", workers)
}
