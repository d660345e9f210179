package topology

// GamePort is the Minecraft protocol port every backend listens on.
// The control plane only supplies a host; the port is never negotiable.
const GamePort = 25565

// DesiredServer is one backend entry from the control plane's topology
// response.
type DesiredServer struct {
	Name       string `json:"name"`
	Address    string `json:"address"` // host only, no port
	ForcedHost string `json:"host,omitempty"`
	Priority   *int   `json:"priority,omitempty"` // lower connects earlier; nil sorts last
}
