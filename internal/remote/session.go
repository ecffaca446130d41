package remote

import "dropzone/internal/sshconfig"

// State tracks where a copy session is in its lifecycle.
type State int

const (
	// StateNoEndpoint means no server has been chosen yet.
	StateNoEndpoint State = iota
	// StateHomePending means an endpoint is selected and home-directory
	// resolution is in flight.
	StateHomePending
	// StateHomeResolved means the remote home directory is cached.
	StateHomeResolved
	// StateHomeUnresolved means home resolution failed; tilde rewriting is
	// skipped for the rest of the session.
	StateHomeUnresolved
)

// Session holds the per-dialog completion state: the selected endpoint, the
// cached remote home directory, and a generation counter that invalidates
// in-flight listing results when they are superseded.
//
// Session is not synchronized. All methods must be called from the dialog's
// update loop; background tasks receive a Snapshot and deliver results back
// as values.
type Session struct {
	state      State
	endpoint   sshconfig.Host
	home       string
	generation uint64
}

// Snapshot is the immutable view handed to a background listing task.
type Snapshot struct {
	Endpoint   sshconfig.Host
	Home       string
	Generation uint64
}

// NewSession returns a session with no endpoint selected.
func NewSession() *Session {
	return &Session{}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Endpoint returns the selected host. Valid only after SelectEndpoint.
func (s *Session) Endpoint() sshconfig.Host {
	return s.endpoint
}

// SelectEndpoint fixes the endpoint for the session and invalidates any
// in-flight query for a previous endpoint. The home cache is cleared until
// SetHome delivers a fresh value.
func (s *Session) SelectEndpoint(host sshconfig.Host) {
	s.endpoint = host
	s.home = ""
	s.state = StateHomePending
	s.generation++
}

// CanQuery reports whether listing queries may be issued. Home resolution
// state does not gate queries; only an unselected endpoint does.
func (s *Session) CanQuery() bool {
	return s.state != StateNoEndpoint
}

// SetHome records the resolved remote home directory. An empty value marks
// resolution as failed and disables tilde rewriting.
func (s *Session) SetHome(home string) {
	if s.state == StateNoEndpoint {
		return
	}
	s.home = home
	if home == "" {
		s.state = StateHomeUnresolved
		return
	}
	s.state = StateHomeResolved
}

// Home returns the cached remote home directory, or "" when unknown.
func (s *Session) Home() string {
	return s.home
}

// NextQuery allocates a generation number for a new listing query. A result
// is stale once any newer query has been issued or the endpoint changed.
func (s *Session) NextQuery() uint64 {
	s.generation++
	return s.generation
}

// Current reports whether the given generation is still the latest query.
func (s *Session) Current(generation uint64) bool {
	return generation == s.generation
}

// Snapshot captures the inputs a background listing task needs.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{Endpoint: s.endpoint, Home: s.home, Generation: s.generation}
}
