package internal

// fallbackPath registers the handler used when no exact path matches.
const fallbackPath = "*"

// routeTable is the mutable route registry used while the app is built.
type routeTable struct {
	routes   map[string]HandlerFunc
	fallback HandlerFunc
}

func newRouteTable() *routeTable {
	return &routeTable{routes: make(map[string]HandlerFunc)}
}

// register adds or replaces the handler for path. The last registration wins.
func (t *routeTable) register(path string, h HandlerFunc) {
	if path == fallbackPath {
		t.fallback = h
		return
	}
	t.routes[path] = h
}

// has reports whether an exact path is registered.
func (t *routeTable) has(path string) bool {
	_, ok := t.routes[path]
	return ok
}

// freeze copies the table into a read-only routeSet.
func (t *routeTable) freeze() routeSet {
	routes := make(map[string]HandlerFunc, len(t.routes))
	for path, h := range t.routes {
		routes[path] = h
	}
	return routeSet{routes: routes, fallback: t.fallback}
}

// routeSet is the immutable route table served after freezing.
type routeSet struct {
	routes   map[string]HandlerFunc
	fallback HandlerFunc
}

// resolve looks path up exactly, falling back to the default handler.
// It returns false when neither exists.
func (s routeSet) resolve(path string) (HandlerFunc, bool) {
	if h, ok := s.routes[path]; ok {
		return h, true
	}
	if s.fallback != nil {
		return s.fallback, true
	}
	return nil, false
}

// size is the number of exact routes, not counting the fallback.
func (s routeSet) size() int {
	return len(s.routes)
}
