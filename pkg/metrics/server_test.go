package metrics

import (
	"testing"
	"time"

	"github.com/shahar42/surf-lamp-engine/pkg/logx"
)

// NewServer registers its collectors with the default Prometheus
// registry, so only one Server may be constructed per test process; this
// single test exercises every recording method against one instance.
func TestServerRecordsAllMetrics(t *testing.T) {
	s := NewServer(logx.New("error"))

	s.IncLocationResult("Hadera", "written")
	s.ObserveFetchLatency("marine-api.open-meteo.com", 120*time.Millisecond)
	s.ObserveCycleDuration(2 * time.Second)
	s.ObserveDeviceReadLatency(5 * time.Millisecond)
}
