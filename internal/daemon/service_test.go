package daemon

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/realtyai/internal/api"
	"github.com/theirongolddev/realtyai/internal/source"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestService(t *testing.T) (*Service, *httptest.Server) {
	t.Helper()
	syn := source.NewSynthetic(7)
	syn.Now = func() time.Time { return time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC) }

	log := logrus.New()
	log.SetOutput(io.Discard)

	s := New(Config{Source: syn, Logger: log, EventsBuffer: 10})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return s, srv
}

// The daemon must be usable as the backend of the real client.
func TestServesClientContract(t *testing.T) {
	s, srv := newTestService(t)
	client, err := api.NewClient(api.Options{BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	ctx := t.Context()

	regions, err := client.AvailableRegions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(regions) != 51 {
		t.Fatalf("regions = %d, want 51", len(regions))
	}

	fc, err := client.Forecast(ctx, api.ForecastRequest{Region: "Texas", Horizon: 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(fc.Forecast) != 3 || len(fc.Historical) == 0 {
		t.Fatalf("forecast shape = %d/%d", len(fc.Historical), len(fc.Forecast))
	}
	if fc.Forecast[0].LowerBound == nil || fc.LastTrainingDate != "2024-01-31" {
		t.Fatalf("unexpected forecast %+v", fc.Forecast[0])
	}

	price, err := client.PredictPrice(ctx, api.PriceRequest{Location: "Baner, Pune", City: "Pune", BHK: 2, TotalArea: 1000, PricePerSqft: 5000, Bathroom: 1})
	if err != nil {
		t.Fatal(err)
	}
	if price.PredictedPrice != 50 || price.PropertyData == nil || price.PropertyData.City != "Pune" {
		t.Fatalf("unexpected prediction %+v", price)
	}

	st, err := client.RegionStatistics(ctx, "Texas")
	if err != nil {
		t.Fatal(err)
	}
	if st.TotalRecords == 0 || st.LatestZHVI == nil {
		t.Fatalf("unexpected statistics %+v", st)
	}

	_, err = client.Forecast(ctx, api.ForecastRequest{Region: "Atlantis", Horizon: 3})
	if !api.IsNotFound(err) || err.Error() != "Region not found" {
		t.Fatalf("err = %v, want 404 Region not found", err)
	}

	_, err = client.Forecast(ctx, api.ForecastRequest{Region: "Texas", Horizon: 99})
	var ae *api.APIError
	if !errors.As(err, &ae) || ae.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("err = %v, want 422", err)
	}

	status := s.snapshotStatus()
	if status.Counters.Forecasts != 3 || status.Counters.Errors != 2 || status.Counters.Predictions != 1 {
		t.Fatalf("counters = %+v", status.Counters)
	}
	if status.EventCount != 6 {
		t.Fatalf("events = %d, want 6", status.EventCount)
	}
}

func TestMalformedBody(t *testing.T) {
	_, srv := newTestService(t)
	resp, err := http.Post(srv.URL+"/forecast", "application/json", strings.NewReader(`{"region":`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if _, ok := body["detail"].(string); !ok {
		t.Fatalf("body = %v, want a string detail", body)
	}
}

func TestStatusAndMetricsEndpoints(t *testing.T) {
	_, srv := newTestService(t)
	_, _ = http.Get(srv.URL + "/available_regions")

	resp, err := http.Get(srv.URL + "/v1/status")
	if err != nil {
		t.Fatal(err)
	}
	var st Status
	err = json.NewDecoder(resp.Body).Decode(&st)
	resp.Body.Close()
	if err != nil {
		t.Fatal(err)
	}
	if st.Source != source.KindSynthetic || st.Counters.Regions != 1 {
		t.Fatalf("status = %+v", st)
	}

	resp, err = http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), `realtyai_requests_total{code="200",endpoint="available_regions"} 1`) {
		t.Fatalf("metrics missing request counter:\n%s", body)
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{EventsBuffer: 2})

	s.mu.Lock()
	s.publishEventLocked(Event{ID: 1})
	s.publishEventLocked(Event{ID: 2})
	s.publishEventLocked(Event{ID: 3})
	s.mu.Unlock()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestConcurrentRecordKeepsEventOrder(t *testing.T) {
	s := New(Config{EventsBuffer: 500})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s.record(Event{Type: "forecast", Timestamp: time.Now()})
			}
		}()
	}
	wg.Wait()

	if st := s.snapshotStatus(); st.Counters.Forecasts != 400 {
		t.Fatalf("forecast counter = %d, want 400", st.Counters.Forecasts)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.events) != 400 {
		t.Fatalf("events len = %d, want 400", len(s.events))
	}
	for i, ev := range s.events {
		if ev.ID != int64(i+1) {
			t.Fatalf("events[%d].ID = %d, want %d", i, ev.ID, i+1)
		}
	}
}
