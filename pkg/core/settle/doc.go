// Package settle sequences the two-phase layout protocol.
//
// A layout generation moves through an explicit state machine:
//
//	Idle ──Load──▶ Estimated ──Rendered──▶ Settling ──▶ Measured
//	                   ▲                                   │
//	                   └──── Load / Update / Resize ◀──────┘
//
// In Estimated the positions and connectors come from the dimension
// estimator, so the host can paint something immediately. Once the host has
// painted, it calls [Settler.Rendered] with a [route.GeometryProvider]; the
// settler re-routes every connector against the true geometry and moves to
// Measured. Connectors whose nodes have no geometry yet are dropped from that
// pass and retried on the next Rendered call.
//
// Canvas resizes are debounced through [Settler.Resize]: a newer resize
// cancels the pending one, so only the latest size is ever laid out.
//
// Hosts observe progress either through the [WithOnEstimate] and
// [WithOnMeasured] callbacks or by blocking in [Settler.Wait]. Callbacks run
// outside the settler's lock and may call back into it.
package settle
