// Package status implements status types: named sets of read-only
// properties, optionally annotated with capability descriptors, arranged
// in a single-inheritance chain.
//
// # Defining Types
//
// A type is declared once, usually in a package-level var block:
//
//	var Base = status.NewType("BaseStatus", nil).
//	    MustDefine("power", status.Field("power"),
//	        descriptor.SwitchAnnotation("Power", "set_power"))
//
//	var Vacuum = status.NewType("VacuumStatus", Base).
//	    MustDefine("battery", status.Field("battery"),
//	        descriptor.SensorAnnotation("Battery", descriptor.WithUnit("%")))
//
// Descriptors are derived from the type and all of its ancestors. A
// property redefined in a descendant replaces the ancestor's definition.
//
// # Snapshots
//
// A Snapshot pairs a type with one fetched payload. Its String form lists
// every property alphabetically:
//
//	<VacuumStatus battery=87 power=True>
//
// Rendering never fails. A property whose getter returns an error or
// panics is shown as the short type name of that error.
package status
