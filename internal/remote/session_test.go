package remote

import (
	"testing"

	"dropzone/internal/sshconfig"
)

func TestSessionLifecycle(t *testing.T) {
	s := NewSession()
	if s.State() != StateNoEndpoint {
		t.Fatalf("initial state = %v", s.State())
	}
	if s.CanQuery() {
		t.Fatal("queries must not be issued before endpoint selection")
	}

	s.SelectEndpoint(sshconfig.Host{Name: "zig"})
	if s.State() != StateHomePending {
		t.Fatalf("state after select = %v", s.State())
	}
	if !s.CanQuery() {
		t.Fatal("queries allowed once an endpoint is selected")
	}

	s.SetHome("/home/alice")
	if s.State() != StateHomeResolved || s.Home() != "/home/alice" {
		t.Fatalf("state=%v home=%q", s.State(), s.Home())
	}
}

func TestSessionHomeUnresolved(t *testing.T) {
	s := NewSession()
	s.SelectEndpoint(sshconfig.Host{Name: "zig"})
	s.SetHome("")
	if s.State() != StateHomeUnresolved {
		t.Fatalf("state = %v, want HomeUnresolved", s.State())
	}
	if !s.CanQuery() {
		t.Fatal("unresolved home must not block queries")
	}
}

func TestSessionSetHomeBeforeSelectIgnored(t *testing.T) {
	s := NewSession()
	s.SetHome("/home/alice")
	if s.State() != StateNoEndpoint || s.Home() != "" {
		t.Fatalf("state=%v home=%q, want untouched session", s.State(), s.Home())
	}
}

func TestQueryGenerations(t *testing.T) {
	s := NewSession()
	s.SelectEndpoint(sshconfig.Host{Name: "zig"})

	first := s.NextQuery()
	second := s.NextQuery()
	if s.Current(first) {
		t.Fatal("superseded query still considered current")
	}
	if !s.Current(second) {
		t.Fatal("latest query must be current")
	}
}

func TestEndpointChangeInvalidatesQueries(t *testing.T) {
	s := NewSession()
	s.SelectEndpoint(sshconfig.Host{Name: "zig"})
	gen := s.NextQuery()

	s.SelectEndpoint(sshconfig.Host{Name: "zag"})
	if s.Current(gen) {
		t.Fatal("endpoint change must invalidate in-flight queries")
	}
	if s.Home() != "" || s.State() != StateHomePending {
		t.Fatalf("home=%q state=%v, want cleared cache and pending resolution", s.Home(), s.State())
	}
}

func TestSnapshotCarriesGeneration(t *testing.T) {
	s := NewSession()
	s.SelectEndpoint(sshconfig.Host{Name: "zig"})
	s.SetHome("/home/alice")
	gen := s.NextQuery()

	snap := s.Snapshot()
	if snap.Generation != gen || snap.Home != "/home/alice" || snap.Endpoint.Name != "zig" {
		t.Fatalf("snapshot = %+v", snap)
	}
}
