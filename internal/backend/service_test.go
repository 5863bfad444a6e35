package backend

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"
)

const timedRoute = `<gpx version="1.1"><metadata><name>Ridge Loop</name></metadata><trk><trkseg>
<trkpt lat="0" lon="0"><ele>100</ele><time>2024-05-01T08:00:00Z</time></trkpt>
<trkpt lat="0" lon="0.01"><ele>200</ele><time>2024-05-01T08:30:00Z</time></trkpt>
<trkpt lat="0" lon="0.02"><ele>150</ele><time>2024-05-01T09:00:00Z</time></trkpt>
</trkseg></trk></gpx>`

const untimedRoute = `<gpx version="1.1"><trk><trkseg>
<trkpt lat="0" lon="0"/><trkpt lat="0" lon="0.1"/>
</trkseg></trk></gpx>`

func TestTrainAssignsSequentialIDs(t *testing.T) {
	s := New(Options{})
	a, err := s.Train("ridge.gpx", strings.NewReader(timedRoute))
	if err != nil { t.Fatalf("train: %v", err) }
	b, err := s.Train("ridge.gpx", strings.NewReader(timedRoute))
	if err != nil { t.Fatalf("train: %v", err) }
	if a.ID != "1" || b.ID != "2" { t.Fatalf("ids=%s,%s", a.ID, b.ID) }
	if a.Name != "Ridge Loop" || a.CompletionTime != 60 { t.Fatalf("item=%+v", a) }
	if got := s.List(); len(got) != 2 || got[0].ID != "1" { t.Fatalf("list=%+v", got) }
}

func TestTrainNameFromFilename(t *testing.T) {
	s := New(Options{})
	doc := strings.Replace(timedRoute, "<metadata><name>Ridge Loop</name></metadata>", "", 1)
	it, err := s.Train("/tmp/lake walk.gpx", strings.NewReader(doc))
	if err != nil { t.Fatalf("train: %v", err) }
	if it.Name != "lake walk" { t.Fatalf("name=%q", it.Name) }
}

func TestTrainRejectsUntimedAndMalformed(t *testing.T) {
	s := New(Options{})
	if _, err := s.Train("u.gpx", strings.NewReader(untimedRoute)); !IsInvalidRoute(err) {
		t.Fatalf("expected invalid route, got %v", err)
	}
	_, err := s.Train("x.gpx", strings.NewReader("garbage"))
	if !IsInvalidRoute(err) { t.Fatalf("expected invalid route, got %v", err) }
	if he, ok := err.(interface{ StatusCode() int }); !ok || he.StatusCode() != 422 { t.Fatalf("status mapping missing") }
	if len(s.List()) != 0 { t.Fatalf("nothing should be stored") }
}

func TestDelete(t *testing.T) {
	s := New(Options{})
	it, _ := s.Train("r.gpx", strings.NewReader(timedRoute))
	if err := s.Delete("42"); !IsNotFound(err) { t.Fatalf("expected not found, got %v", err) }
	if err := s.Delete(it.ID.String()); err != nil { t.Fatalf("delete: %v", err) }
	if len(s.List()) != 0 { t.Fatalf("list not empty") }
	if err := s.Delete(it.ID.String()); !IsNotFound(err) { t.Fatalf("second delete should be not found") }
	next, _ := s.Train("r.gpx", strings.NewReader(timedRoute))
	if next.ID != "2" { t.Fatalf("ids must not be reused, got %s", next.ID) }
}

func TestPredictDefaultPace(t *testing.T) {
	s := New(Options{DefaultPace: 10})
	got, err := s.Predict(strings.NewReader(untimedRoute))
	if err != nil { t.Fatalf("predict: %v", err) }
	// 0.1 degree of longitude at the equator is about 11.12 km.
	if math.Abs(got-111.2) > 0.5 { t.Fatalf("got %v", got) }
}

func TestPredictUsesLearnedPace(t *testing.T) {
	s := New(Options{})
	if _, err := s.Train("r.gpx", strings.NewReader(timedRoute)); err != nil { t.Fatalf("train: %v", err) }
	got, err := s.Predict(strings.NewReader(timedRoute))
	if err != nil { t.Fatalf("predict: %v", err) }
	if math.Abs(got-60) > 1e-6 { t.Fatalf("got %v", got) }
}

func TestPredictMalformed(t *testing.T) {
	if _, err := New(Options{}).Predict(strings.NewReader(`<gpx></gpx>`)); err == nil {
		t.Fatalf("expected error")
	}
}

func TestConcurrentTrain(t *testing.T) {
	s := New(Options{})
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := s.Train(fmt.Sprintf("r%d.gpx", i), strings.NewReader(timedRoute)); err != nil {
				t.Errorf("train: %v", err)
			}
		}(i)
	}
	wg.Wait()
	seen := map[string]bool{}
	for _, it := range s.List() {
		if seen[it.ID.String()] { t.Fatalf("duplicate id %s", it.ID) }
		seen[it.ID.String()] = true
	}
	if len(seen) != 20 { t.Fatalf("got %d items", len(seen)) }
}
