// Package descriptor implements typed, self-describing capability metadata.
//
// # Descriptor Kinds
//
// A status property is exposed to generic clients through exactly one
// descriptor kind:
//   - Sensor: read-only measured value
//   - Switch: writable boolean with an actuator method
//   - NumberSetting: writable number with bounds and step
//   - EnumSetting: writable value restricted to named choices
//
// # Annotations
//
// Annotations are declared once, when a status type is defined:
//
//	descriptor.SensorAnnotation("Voltage", descriptor.WithUnit("V"))
//	descriptor.SwitchAnnotation("Power", "set_power")
//	descriptor.SettingAnnotation("Level", "set_level",
//	    descriptor.WithMin(0), descriptor.WithMax(2))
//
// Options that the annotation kind does not recognize are kept in the
// descriptor's Extras map instead of being rejected.
//
// # Setters
//
// Writable descriptors name an actuator method rather than holding one.
// Bind attaches a thunk that resolves that name through a Resolver each
// time the setter is invoked, so actuators may be attached or replaced
// after the descriptors exist.
package descriptor
