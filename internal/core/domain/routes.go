package domain

// Route is a named entry of the navigation surface.
type Route struct {
	// Path is the client path.
	Path string

	// Title is the menu label.
	Title string

	// Variant is the session variant launched by the route, if any.
	Variant string

	// Legacy marks routes kept from earlier revisions.
	Legacy bool
}

// IsSession returns true if the route opens an AR session.
func (r Route) IsSession() bool {
	return r.Variant != ""
}

// DefaultRoutes returns the navigation table in menu order.
func DefaultRoutes() []Route {
	return []Route{
		{Path: "/", Title: "Home"},
		{Path: "/mindar-image", Title: "Image tracking", Variant: "mindar-image"},
		{Path: "/mindar-face", Title: "Face tracking", Variant: "mindar-face"},
		{Path: "/legacy/home", Title: "Image recognition", Legacy: true},
		{Path: "/legacy/ar", Title: "Marker tracking", Variant: "legacy-ar", Legacy: true},
		{Path: "/legacy/test1", Title: "Test page 1", Legacy: true},
		{Path: "/legacy/test2", Title: "Test page 2", Legacy: true},
	}
}
