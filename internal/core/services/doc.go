// Package services holds the recognition, session and settings logic behind
// the driving ports.
//
// Sessions are driven by events from a driven.TrackingEngineProvider and
// publish immutable SessionState snapshots; recognition compares candidate
// bytes against descriptors fetched through a driven.DescriptorSource.
// Nothing here touches a device or the network directly.
package services
