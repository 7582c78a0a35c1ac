package health

import "testing"

type fakeService struct {
	name string
	ok   bool
	msg  string
}

func (f fakeService) ServiceName() string { return f.name }
func (f fakeService) Ok() (bool, string)  { return f.ok, f.msg }

func TestOverallStatus_EmptyRegister_ReturnsTrue(t *testing.T) {
	hr := NewHealthServiceRegister()
	if got := hr.OverallStatus(); got != true {
		t.Fatalf("OverallStatus() = %v, want true for empty register", got)
	}
}

func TestOverallStatus_AllHealthy_ReturnsTrue(t *testing.T) {
	hr := NewHealthServiceRegister()
	hr.Register(
		fakeService{name: "database", ok: true, msg: "ok"},
		fakeService{name: "scheduler", ok: true, msg: "ok"},
	)
	if got := hr.OverallStatus(); got != true {
		t.Fatalf("OverallStatus() = %v, want true when all services healthy", got)
	}
}

func TestOverallStatus_AnyUnhealthy_ReturnsFalse(t *testing.T) {
	hr := NewHealthServiceRegister()
	hr.Register(
		fakeService{name: "database", ok: true, msg: "ok"},
		fakeService{name: "queue", ok: false, msg: "down"},
		fakeService{name: "scheduler", ok: true, msg: "ok"},
	)
	if got := hr.OverallStatus(); got != false {
		t.Fatalf("OverallStatus() = %v, want false when any service is unhealthy", got)
	}
}

func TestCheckAll_EmptyRegister_ReturnsEmptyMap(t *testing.T) {
	hr := NewHealthServiceRegister()
	got := hr.CheckAll()
	if len(got) != 0 {
		t.Fatalf("CheckAll() = %v, want empty map for empty register", got)
	}
}

func TestCheckAll_ReturnsAllEntries(t *testing.T) {
	hr := NewHealthServiceRegister()
	svcs := []fakeService{
		{name: "database", ok: true, msg: "connected"},
		{name: "queue", ok: false, msg: "timeout"},
		{name: "scheduler", ok: true, msg: "responding"},
	}
	hr.Register(svcs[0], svcs[1], svcs[2])

	results := hr.CheckAll()
	if len(results) != len(svcs) {
		t.Fatalf("CheckAll() returned %d entries, want %d", len(results), len(svcs))
	}

	for _, s := range svcs {
		entry, found := results[s.name]
		if !found {
			t.Fatalf("missing entry for %s", s.name)
		}
		healthy, ok := entry["healthy"].(bool)
		if !ok || healthy != s.ok {
			t.Fatalf("%s healthy = %v (type ok=%v), want %v", s.name, entry["healthy"], ok, s.ok)
		}
		msg, ok := entry["message"].(string)
		if !ok || msg != s.msg {
			t.Fatalf("%s message = %v (type ok=%v), want %q", s.name, entry["message"], ok, s.msg)
		}
	}
}
