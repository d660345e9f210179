package routing

// Registration is a backend server the proxy currently routes to
type Registration struct {
	Name    string `json:"name"`
	Address string `json:"address"` // format: "host:port"
}

// Table is the proxy's live routing state: the named backend
// registrations, the ordered connection-attempt list consulted for
// default routing, and the hostname-based forced-host map.
//
// The reconciler is the only writer; request-routing code only reads.
// Implementations bridge to whatever the host proxy exposes. Replacing
// the forced-host map wholesale may require privileged access on a real
// proxy, which stays hidden behind SetForcedHosts.
type Table interface {
	// Registrations returns all registered backends, sorted by name
	Registrations() []Registration
	// Lookup retrieves a registration by backend name
	Lookup(name string) (Registration, bool)
	// Register adds a backend registration
	Register(reg Registration)
	// Unregister removes a backend by name, reporting whether it existed
	Unregister(name string) bool

	// AttemptOrder returns the ordered backend names for default routing
	AttemptOrder() []string
	// SetAttemptOrder replaces the attempt order wholesale
	SetAttemptOrder(names []string)
	// RemoveFromAttemptOrder strips one name from the attempt order
	RemoveFromAttemptOrder(name string)

	// ForcedHosts returns the hostname -> backend-names routing map
	ForcedHosts() map[string][]string
	// SetForcedHosts replaces the forced-host map wholesale
	SetForcedHosts(hosts map[string][]string)
}
