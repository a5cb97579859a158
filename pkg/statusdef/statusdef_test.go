package statusdef

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escoand/python-miio/pkg/descriptor"
	"github.com/escoand/python-miio/pkg/status"
)

const purifierDefs = `
name: DefBaseStatus
properties:
  - name: power
    switch: {name: Power, setter_name: set_power, unit: none}
  - name: model
    const: zhimi.airpurifier.v1
---
name: DefPurifierStatus
parent: DefBaseStatus
properties:
  - name: temperature
    key: temp_dec
    scale: 0.1
    sensor: {name: Temperature, unit: C, icon: mdi:thermometer}
  - name: level
    setting: {name: Level, setter_name: set_level, min_value: 0, max_value: 2}
  - name: mode
    setting:
      name: Mode
      setter_name: set_mode
      choices:
        - {name: Silent, value: 0}
        - {name: Strong, value: 1}
  - name: led
    setting: {name: LED, setter_name: set_led, choices: [bright, dim, off]}
`

func TestParseMultipleDocuments(t *testing.T) {
	defs, err := Parse([]byte(purifierDefs))
	require.NoError(t, err)
	require.Len(t, defs, 2)

	assert.Equal(t, "DefBaseStatus", defs[0].Name)
	assert.Equal(t, "DefBaseStatus", defs[1].Parent)
	assert.Len(t, defs[1].Properties, 4)
	assert.Equal(t, "temp_dec", defs[1].Properties[0].Key)
	assert.Equal(t, 0.1, defs[1].Properties[0].Scale)
}

func TestBuildTypes(t *testing.T) {
	defs, err := Parse([]byte(purifierDefs))
	require.NoError(t, err)
	types, err := Build(defs)
	require.NoError(t, err)
	require.Len(t, types, 2)

	purifier := types[1]
	assert.True(t, purifier.IsA(types[0]))
	assert.Equal(t, []string{"led", "level", "mode", "model", "power", "temperature"}, purifier.PropertyNames())

	descs := purifier.Descriptors()
	assert.Len(t, descs, 5, "model has no annotation")

	temp, ok := descs["temperature"].(*descriptor.Sensor)
	require.True(t, ok)
	assert.Equal(t, "C", temp.Unit())
	assert.Equal(t, map[string]any{"icon": "mdi:thermometer"}, temp.Extras())

	power, ok := descs["power"].(*descriptor.Switch)
	require.True(t, ok)
	assert.Equal(t, "set_power", power.SetterName())
	assert.Equal(t, "", power.Unit())
	assert.Equal(t, map[string]any{"unit": "none"}, power.Extras())

	level, ok := descs["level"].(*descriptor.NumberSetting)
	require.True(t, ok)
	assert.Equal(t, 0.0, level.Min())
	assert.Equal(t, 2.0, level.Max())
	assert.Equal(t, 1.0, level.Step())

	mode, ok := descs["mode"].(*descriptor.EnumSetting)
	require.True(t, ok)
	assert.Equal(t, []string{"Silent", "Strong"}, mode.Choices().Names())
	assert.Equal(t, 1, mode.Choices()[1].Value)

	led, ok := descs["led"].(*descriptor.EnumSetting)
	require.True(t, ok)
	assert.Len(t, led.Choices(), 3)
}

func TestBuildGetters(t *testing.T) {
	defs, err := Parse([]byte(purifierDefs))
	require.NoError(t, err)
	types, err := Build(defs)
	require.NoError(t, err)

	snap := types[1].New(status.Data{
		"temp_dec": 215,
		"power":    true,
		"level":    1,
		"mode":     0,
		"led":      "dim",
	})

	v, err := snap.Get("temperature")
	require.NoError(t, err)
	assert.InDelta(t, 21.5, v, 1e-9)

	v, err = snap.Get("model")
	require.NoError(t, err)
	assert.Equal(t, "zhimi.airpurifier.v1", v)

	bad := types[1].New(status.Data{"temp_dec": "hot"})
	_, err = bad.Get("temperature")
	var typeErr *status.TypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, "temp_dec", typeErr.Key)

	_, err = bad.Get("power")
	var keyErr *status.KeyError
	require.ErrorAs(t, err, &keyErr)
	assert.Equal(t, "power", keyErr.Key)
}

func TestAnnotationNameIsOptional(t *testing.T) {
	defs, err := Parse([]byte(`
name: T
properties:
  - name: empty
    const: 1
    sensor: {name: "", unknown_kwarg: "123"}
  - name: omitted
    const: 2
    sensor: {unknown_kwarg: "123"}
`))
	require.NoError(t, err)
	types, err := Build(defs)
	require.NoError(t, err)
	require.Len(t, types, 1)

	sensors := types[0].Sensors()
	require.Len(t, sensors, 2)
	for _, prop := range []string{"empty", "omitted"} {
		s := sensors[prop]
		require.NotNil(t, s, prop)
		assert.Equal(t, "", s.Name())
		assert.Equal(t, "123", s.Extras()["unknown_kwarg"])
	}
}

func TestDefinitionErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr error
	}{
		{
			name:    "type without name",
			yaml:    "properties: []\n",
			wantErr: ErrMissingName,
		},
		{
			name:    "property without name",
			yaml:    "name: T\nproperties:\n  - key: x\n",
			wantErr: ErrMissingName,
		},
		{
			name:    "two annotations",
			yaml:    "name: T\nproperties:\n  - name: x\n    sensor: {name: X}\n    switch: {name: X, setter_name: set_x}\n",
			wantErr: ErrMultipleAnnotation,
		},
		{
			name:    "switch without setter",
			yaml:    "name: T\nproperties:\n  - name: x\n    switch: {name: X}\n",
			wantErr: ErrMissingSetterName,
		},
		{
			name:    "unknown parent",
			yaml:    "name: T\nparent: NoSuchStatusType\n",
			wantErr: ErrUnknownParent,
		},
		{
			name:    "setting without bounds",
			yaml:    "name: T\nproperties:\n  - name: x\n    setting: {name: X, setter_name: set_x, min_value: 0}\n",
			wantErr: descriptor.ErrInvalidBounds,
		},
		{
			name:    "setting with empty choices",
			yaml:    "name: T\nproperties:\n  - name: x\n    setting: {name: X, setter_name: set_x, choices: []}\n",
			wantErr: descriptor.ErrEmptyChoices,
		},
		{
			name:    "choice without name",
			yaml:    "name: T\nproperties:\n  - name: x\n    setting: {name: X, setter_name: set_x, choices: [{value: 1}]}\n",
			wantErr: descriptor.ErrInvalidChoices,
		},
		{
			name:    "duplicate property",
			yaml:    "name: T\nproperties:\n  - name: x\n  - name: x\n",
			wantErr: status.ErrDuplicateProperty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defs, err := Parse([]byte(tt.yaml))
			if err == nil {
				_, err = Build(defs)
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("name: T\ncolour: red\n"))
	assert.Error(t, err)
}

func TestLoadRegistersTypes(t *testing.T) {
	types, err := Load([]byte("name: DefRegisteredBase\nproperties:\n  - name: power\n"))
	require.NoError(t, err)
	require.Len(t, types, 1)

	got, ok := status.Lookup("DefRegisteredBase")
	require.True(t, ok)
	assert.Same(t, types[0], got)

	// A later load may extend a registered type.
	child, err := Load([]byte("name: DefRegisteredChild\nparent: DefRegisteredBase\n"))
	require.NoError(t, err)
	assert.Same(t, got, child[0].Parent())

	_, err = Load([]byte("name: DefRegisteredBase\n"))
	assert.ErrorIs(t, err, status.ErrDuplicateType)
}

func TestLoadIsAllOrNothing(t *testing.T) {
	_, err := Load([]byte("name: DefTakenStatus\n"))
	require.NoError(t, err)

	_, err = Load([]byte("name: DefBatchFirst\n---\nname: DefTakenStatus\n"))
	assert.ErrorIs(t, err, status.ErrDuplicateType)

	_, ok := status.Lookup("DefBatchFirst")
	assert.False(t, ok, "no type of a failed batch may be registered")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fan.yaml")
	data := "name: DefFileStatus\nproperties:\n  - name: speed\n    sensor: {name: Speed, unit: rpm}\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	types, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.Len(t, types[0].Sensors(), 1)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
