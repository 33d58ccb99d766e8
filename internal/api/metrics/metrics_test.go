package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistersWithRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.LoginsTotal.WithLabelValues(ResultSuccess).Inc()
	m.AuthorizationDeniedTotal.WithLabelValues("/auth/admin", ReasonForbidden).Inc()
	m.SessionsCreatedTotal.Inc()

	if got := testutil.ToFloat64(m.LoginsTotal.WithLabelValues(ResultSuccess)); got != 1 {
		t.Fatalf("expected 1 login, got %v", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"forms_logins_total",
		"forms_authorization_denied_total",
		"forms_sessions_created_total",
	} {
		if !names[want] {
			t.Errorf("metric %s not registered", want)
		}
	}
}

func TestNewTwiceOnSeparateRegistries(t *testing.T) {
	New(prometheus.NewRegistry())
	New(prometheus.NewRegistry())
	New(nil)
}
