package registry

import (
	"testing"

	surf "github.com/shahar42/surf-lamp-engine/pkg"
	"github.com/shahar42/surf-lamp-engine/pkg/logx"
)

func testLogger() *logx.Logger { return logx.New("error") }

func TestLookupFound(t *testing.T) {
	r := New(testLogger(), []surf.Location{
		{Name: "Hadera", WaveURLs: []string{"https://a"}, WindURLs: []string{"https://b"}},
	})
	loc, ok := r.Lookup("Hadera")
	if !ok {
		t.Fatal("expected Hadera to be found")
	}
	if loc.Name != "Hadera" {
		t.Errorf("unexpected location: %+v", loc)
	}
}

func TestLookupNotFound(t *testing.T) {
	r := New(testLogger(), nil)
	_, ok := r.Lookup("Nowhere")
	if ok {
		t.Fatal("expected Nowhere to be absent")
	}
}

func TestDuplicateNameKeepsFirst(t *testing.T) {
	r := New(testLogger(), []surf.Location{
		{Name: "Hadera", Latitude: 1},
		{Name: "Hadera", Latitude: 2},
	})
	loc, _ := r.Lookup("Hadera")
	if loc.Latitude != 1 {
		t.Errorf("expected first occurrence to win, got latitude %v", loc.Latitude)
	}
}

func TestActiveLocationsIntersectsInUse(t *testing.T) {
	r := New(testLogger(), []surf.Location{
		{Name: "Hadera"},
		{Name: "Ashdod"},
	})
	inUse := map[string]struct{}{"Hadera": {}, "Retired": {}}
	active := r.ActiveLocations(inUse)
	if len(active) != 1 || active[0].Name != "Hadera" {
		t.Errorf("expected only Hadera, got %+v", active)
	}
}
