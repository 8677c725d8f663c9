package models

import "testing"

func TestIsTerminal(t *testing.T) {
	terminal := map[BookingStatus]bool{
		StatusCompleted: true,
		StatusCancelled: true,
		StatusRejected:  true,
		StatusExpired:   true,
	}
	for _, status := range AllStatuses {
		if got := status.IsTerminal(); got != terminal[status] {
			t.Errorf("%s.IsTerminal() = %v, want %v", status, got, terminal[status])
		}
	}
}

func TestStatusValid(t *testing.T) {
	for _, status := range AllStatuses {
		if !status.Valid() {
			t.Errorf("%s should be valid", status)
		}
	}
	for _, bogus := range []BookingStatus{"", "requested", "DONE", "UNKNOWN"} {
		if bogus.Valid() {
			t.Errorf("%q should be invalid", bogus)
		}
	}
}

func TestGeoPoint(t *testing.T) {
	p := NewGeoPoint(36.8219, -1.2921)
	if p.Type != "Point" {
		t.Errorf("type = %q, want Point", p.Type)
	}
	if p.Lon() != 36.8219 || p.Lat() != -1.2921 {
		t.Errorf("lon/lat = %v/%v", p.Lon(), p.Lat())
	}

	var malformed GeoPoint
	if malformed.Lon() != 0 || malformed.Lat() != 0 {
		t.Error("malformed point should read as origin")
	}
}
