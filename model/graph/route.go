package graph

// Route is the tagged result of a routing decision: a single successor, a
// fan-out cohort, or the terminal marker. Using a tagged type (rather than
// inspecting a dynamic return value) keeps routing decisions explicit.
type Route struct {
	kind    routeKind
	targets []string
}

type routeKind int

const (
	routeTerminal routeKind = iota
	routeSingle
	routeFanOut
)

// RouteTo routes to a single successor node.
func RouteTo(name string) Route {
	return Route{kind: routeSingle, targets: []string{name}}
}

// FanOut routes to a cohort of nodes launched concurrently. An empty cohort
// is equivalent to End.
func FanOut(names ...string) Route {
	if len(names) == 0 {
		return End()
	}
	return Route{kind: routeFanOut, targets: names}
}

// End returns the terminal marker signalling run completion.
func End() Route {
	return Route{kind: routeTerminal}
}

// IsTerminal reports whether the route ends the run.
func (r Route) IsTerminal() bool {
	return r.kind == routeTerminal
}

// IsFanOut reports whether the route launches a concurrent cohort.
func (r Route) IsFanOut() bool {
	return r.kind == routeFanOut
}

// Targets returns the successor node names; nil for a terminal route.
func (r Route) Targets() []string {
	return r.targets
}
