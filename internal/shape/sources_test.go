package shape

import (
	"testing"
	"time"

	"github.com/gyeh/clinicload/internal/model"
)

func TestUsersSkipsMissingID(t *testing.T) {
	users := Users([]model.DirectoryUser{
		{ID: "a1", GivenName: ptr("Ada")},
		{ID: "", GivenName: ptr("Ghost")},
	})
	if len(users) != 1 || users[0].MSEntraID != "a1" {
		t.Errorf("users = %+v", users)
	}
}

func TestDevices(t *testing.T) {
	pid := int64(101)
	devices := Devices([]model.FulfillmentRow{
		{Vendor: "Omron", DeviceID: "ab-cd-12", DeviceName: "Omron BP7350", PatientID: &pid},
		{Vendor: "Omron", DeviceID: "ff-01", DeviceName: "Tenovi Glucometer"},
	})
	if len(devices) != 2 {
		t.Fatalf("expected 2 devices, got %d", len(devices))
	}
	if devices[0].HardwareUUID != "abcd12" || devices[0].Vendor != "Omron" || *devices[0].SharePointID != 101 {
		t.Errorf("device 0 = %+v", devices[0])
	}
	if devices[1].Vendor != "Tenovi" || devices[1].SharePointID != nil {
		t.Errorf("device 1 = %+v", devices[1])
	}
}

func TestReadings(t *testing.T) {
	v, manual := 123.456, true
	g := GlucoseReadings([]model.GlucoseSourceRow{{Reading: &v, ManualReading: &manual}})
	if *g[0].GlucoseReading != 123.46 || *g[0].IsManual != 1 {
		t.Errorf("glucose = %+v", g[0])
	}

	sys, dia, auto := 120.0, 80.004, false
	bp := BloodPressureReadings([]model.BloodPressureSourceRow{{Systolic: &sys, Diastolic: &dia, ManualReading: &auto}})
	if *bp[0].DiastolicReading != 80 || *bp[0].IsManual != 0 {
		t.Errorf("bp = %+v", bp[0])
	}
}

func TestVendorReadings(t *testing.T) {
	sp := int64(5)
	v1, v2 := 130.0, 85.0
	ms := []model.VendorMeasurement{
		{SharePointID: &sp, DeviceName: "Tenovi BPM", Metric: model.MetricBloodPressure, Value1: &v1, Value2: &v2},
		{SharePointID: &sp, DeviceName: "Tenovi Glucometer", Metric: model.MetricGlucose, Value1: &v1},
	}

	bp := VendorBloodPressure(ms)
	if len(bp) != 1 || *bp[0].SystolicReading != 130 || *bp[0].DiastolicReading != 85 || *bp[0].IsManual != 0 {
		t.Errorf("bp = %+v", bp)
	}
	g := VendorGlucose(ms)
	if len(g) != 1 || deref(g[0].TempDevice) != "Tenovi Glucometer" {
		t.Errorf("glucose = %+v", g)
	}
}

func TestVendorThrough(t *testing.T) {
	end := time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)
	inside := end.Add(-time.Hour)
	after := end.Add(72 * time.Hour)

	kept, dropped := VendorThrough([]model.VendorMeasurement{
		{DeviceName: "in window", Timestamp: &inside},
		{DeviceName: "taken late", Timestamp: &after},
		{DeviceName: "recorded late", Created: &after},
		{DeviceName: "taken in window, recorded late", Timestamp: &inside, Created: &after},
		{DeviceName: "at end", Timestamp: &end},
		{DeviceName: "undated"},
	}, end)

	if dropped != 2 {
		t.Errorf("dropped = %d, want 2", dropped)
	}
	var names []string
	for _, m := range kept {
		names = append(names, m.DeviceName)
	}
	want := []string{"in window", "taken in window, recorded late", "at end", "undated"}
	if len(names) != len(want) {
		t.Fatalf("kept = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("kept[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}
