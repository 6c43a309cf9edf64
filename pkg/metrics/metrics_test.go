package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/digitalocean/atlas-check/pkg/message"
	"github.com/digitalocean/atlas-check/pkg/types/check"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	msg := message.New(0)
	msg.AddOK("1", "fresh")
	msg.AddOK("2", "fresh")
	msg.AddError("2", "No data")

	m := New()
	m.Observe("1234", "ping", check.StatusCritical, msg)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.status.WithLabelValues("1234", "ping")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.probes.WithLabelValues("1234", "ping", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.probes.WithLabelValues("1234", "ping", "error")))

	path := filepath.Join(t.TempDir(), "atlas.prom")
	require.NoError(t, m.WriteFile(path))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(b), `atlas_check_status{kind="ping",measurement_id="1234"} 2`), string(b))
}

func TestObserveUnknown(t *testing.T) {
	m := New()
	m.Observe("1234", "http", check.StatusUnknown, nil)
	assert.Equal(t, float64(3), testutil.ToFloat64(m.status.WithLabelValues("1234", "http")))
	n, err := testutil.GatherAndCount(m.Gatherer(), "atlas_check_probes")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
