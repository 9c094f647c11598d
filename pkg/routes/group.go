package routes

import "net/http"

// Group is one domain's routes under a shared prefix such as /screening.
type Group struct {
	Prefix string
	Routes []Route
}

// Patterns returns the ServeMux pattern of every route in registration order.
func (g Group) Patterns() []string {
	out := make([]string, len(g.Routes))
	for i, r := range g.Routes {
		out[i] = g.pattern(r)
	}
	return out
}

func (g Group) pattern(r Route) string {
	return r.Method + " " + g.Prefix + r.Pattern
}

// Register mounts every group's routes on mux. ServeMux panics on a
// conflicting pattern, so two groups claiming one route fail at startup.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, g := range groups {
		for _, r := range g.Routes {
			mux.HandleFunc(g.pattern(r), r.Handler)
		}
	}
}
