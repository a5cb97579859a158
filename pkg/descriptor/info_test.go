package descriptor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func mustBuild(t *testing.T, a Annotation, property string) Descriptor {
	t.Helper()
	d, err := a.Build(property)
	require.NoError(t, err)
	return d
}

func TestInfoOf(t *testing.T) {
	level := mustBuild(t, SettingAnnotation("Level", "set_level", WithMin(0), WithMax(2)), "level")
	info := InfoOf(level)

	assert.Equal(t, "level", info.Property)
	assert.Equal(t, "number", info.Kind)
	assert.Equal(t, "set_level", info.SetterName)
	require.NotNil(t, info.Step)
	assert.Equal(t, 1.0, *info.Step)
	assert.Equal(t, 0.0, *info.Min)
	assert.Equal(t, 2.0, *info.Max)

	mode := mustBuild(t, SettingAnnotation("Mode", "set_mode", WithChoices([]string{"a", "b"})), "mode")
	assert.Equal(t, []string{"a", "b"}, InfoOf(mode).Choices)

	temp := mustBuild(t, SensorAnnotation("Temp", WithUnit("°C"), WithExtra("icon", "thermo")), "temp")
	ti := InfoOf(temp)
	assert.Empty(t, ti.SetterName)
	assert.Nil(t, ti.Min)
	assert.Equal(t, map[string]any{"icon": "thermo"}, ti.Extras)
}

func TestInfosSorted(t *testing.T) {
	descs := map[string]*Sensor{
		"zeta":  mustBuild(t, SensorAnnotation("Z"), "zeta").(*Sensor),
		"alpha": mustBuild(t, SensorAnnotation("A"), "alpha").(*Sensor),
	}
	infos := Infos(descs)
	require.Len(t, infos, 2)
	assert.Equal(t, "alpha", infos[0].Property)
	assert.Equal(t, "zeta", infos[1].Property)
}

func TestCBORRoundTrip(t *testing.T) {
	infos := []Info{
		InfoOf(mustBuild(t, SwitchAnnotation("Power", "set_power", WithExtra("icon", "mdi:power")), "power")),
		InfoOf(mustBuild(t, SettingAnnotation("Level", "set_level", WithMin(0), WithMax(2), WithStep(0.5)), "level")),
	}

	data, err := EncodeCBOR(infos)
	require.NoError(t, err)

	again, err := EncodeCBOR(infos)
	require.NoError(t, err)
	assert.Equal(t, data, again, "encoding must be deterministic")

	decoded, err := DecodeCBOR(data)
	require.NoError(t, err)
	assert.Equal(t, infos, decoded)
}

func TestDecodeCBORGarbage(t *testing.T) {
	_, err := DecodeCBOR([]byte{0xff, 0x00})
	assert.Error(t, err)
}

func TestEncodeYAML(t *testing.T) {
	infos := []Info{InfoOf(mustBuild(t, SensorAnnotation("Voltage", WithUnit("V")), "voltage"))}
	data, err := EncodeYAML(infos)
	require.NoError(t, err)

	var out []map[string]any
	require.NoError(t, yaml.Unmarshal(data, &out))
	require.Len(t, out, 1)
	assert.Equal(t, "voltage", out[0]["property"])
	assert.Equal(t, "V", out[0]["unit"])
	assert.NotContains(t, out[0], "setter_name")
}
