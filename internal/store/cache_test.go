package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/theirongolddev/realtyai/internal/model"
)

func openTest(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "nested", "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRegionsRoundTrip(t *testing.T) {
	c := openTest(t)

	names, at, err := c.LoadRegions()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 0 || !at.IsZero() {
		t.Fatalf("empty cache returned %v at %v", names, at)
	}

	want := []string{"Wyoming", "Alabama", "Ohio"}
	if err := c.SaveRegions(want); err != nil {
		t.Fatal(err)
	}
	if err := c.SaveRegions(want[:2]); err != nil {
		t.Fatal(err)
	}

	names, at, err = c.LoadRegions()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "Wyoming" || names[1] != "Alabama" {
		t.Errorf("names = %v, want order preserved and replaced", names)
	}
	if time.Since(at) > time.Minute {
		t.Errorf("fetched_at = %v", at)
	}
}

func TestPredictionHistory(t *testing.T) {
	c := openTest(t)
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, city := range []string{"Pune", "Mumbai", "Pune"} {
		_, err := c.SavePrediction(model.Prediction{
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
			Source:     "synthetic",
			Location:   "Somewhere, " + city,
			City:       city,
			BHK:        2,
			TotalArea:  1000,
			Bathroom:   2,
			Balcony:    i%2 == 0,
			PriceLakhs: float64(50 + i*10),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	got, err := c.RecentPredictions(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d predictions, want 2", len(got))
	}
	if got[0].PriceLakhs != 70 || got[1].PriceLakhs != 60 {
		t.Errorf("not newest first: %v, %v", got[0].PriceLakhs, got[1].PriceLakhs)
	}
	if got[0].ID == "" || !got[0].Balcony || got[1].Balcony {
		t.Errorf("unexpected record %+v", got[0])
	}
	if !got[0].CreatedAt.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("created_at = %v", got[0].CreatedAt)
	}

	st, err := c.PredictionStats()
	if err != nil {
		t.Fatal(err)
	}
	if st.Count != 3 || st.Cities != 2 || st.MinLakhs != 50 || st.MaxLakhs != 70 || st.MeanLakhs != 60 {
		t.Errorf("stats = %+v", st)
	}

	if err := c.DeletePrediction(got[0].ID); err != nil {
		t.Fatal(err)
	}
	n, err := c.ClearPredictions()
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("cleared %d, want 2", n)
	}
	all, _ := c.RecentPredictions(0)
	if len(all) != 0 {
		t.Errorf("history not empty: %d", len(all))
	}
}
