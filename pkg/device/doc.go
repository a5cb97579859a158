// Package device connects status types to a live device.
//
// A Controller reads the current status through a Fetcher and exposes the
// snapshot's sensors, switches and settings. Writable descriptors returned
// by a Controller are bound to it: invoking a descriptor's Set looks up
// the actuator by setter name at call time, first in the table filled by
// Attach and then among the exported methods of Config.Owner.
//
// Every accessor performs exactly one fetch. Callers that need the
// snapshot together with its descriptors should use Capabilities.
package device
