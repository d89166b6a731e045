// Package audit provides the trace/telemetry emission path of §6: a chain of
// Aspect hooks run Before/After/OnError around the six traced operations
// (bridge registration, bridge call, topology transition, policy decision,
// resource threshold crossing, error raised), modeled on the teacher's AOP
// Aspect system (types/aspect.go, builtin/aspect/*.go). The core's own
// obligation stops at emission; Sink implementations in this package are
// optional conveniences for an external collector.
package audit

import (
	"github.com/bridgemesh/core/identifier"
)

// Point names one of the six traced operations.
type Point string

const (
	PointBridgeRegistered   Point = "bridge_registered"
	PointBridgeCallStart    Point = "bridge_call_start"
	PointBridgeCallEnd      Point = "bridge_call_end"
	PointTopologyEnter      Point = "topology_enter"
	PointTopologyExit       Point = "topology_exit"
	PointPolicyDecision     Point = "policy_decision"
	PointResourceThreshold  Point = "resource_threshold"
	PointErrorRaised        Point = "error_raised"
)

// Event is one trace event. ID attributes the event per §4.3; Fields carries
// point-specific detail (bridge language, layer names, decision outcome,
// resource kind, error code, ...).
type Event struct {
	ID     identifier.ID
	Point  Point
	Fields map[string]any
}

// NewEvent stamps a fresh identifier onto an event at the given point.
func NewEvent(point Point, fields map[string]any) (Event, error) {
	id, err := identifier.New()
	if err != nil {
		return Event{}, err
	}
	return Event{ID: id, Point: point, Fields: fields}, nil
}
