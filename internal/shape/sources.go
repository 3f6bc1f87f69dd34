package shape

import (
	"strings"
	"time"

	"github.com/gyeh/clinicload/internal/model"
	"github.com/gyeh/clinicload/internal/normalize"
)

// Users maps directory members onto user rows. Members without an object id
// are skipped.
func Users(members []model.DirectoryUser) []model.User {
	out := make([]model.User, 0, len(members))
	for _, m := range members {
		if m.ID == "" {
			continue
		}
		out = append(out, model.User{
			FirstName:   m.GivenName,
			LastName:    m.Surname,
			DisplayName: m.DisplayName,
			Email:       m.Mail,
			MSEntraID:   m.ID,
		})
	}
	return out
}

// Devices maps fulfillment rows onto device rows. Hardware ids lose their
// dashes and the vendor is inferred from the device name when the recorded
// one does not appear in it.
func Devices(rows []model.FulfillmentRow) []model.Device {
	out := make([]model.Device, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.Device{
			SharePointID: r.PatientID,
			Vendor:       normalize.StandardizeVendor(r.Vendor, r.DeviceName),
			HardwareUUID: strings.ReplaceAll(r.DeviceID, "-", ""),
			Name:         r.DeviceName,
		})
	}
	return out
}

// GlucoseReadings rounds readings to two decimals and maps the manual flag to 0/1.
func GlucoseReadings(rows []model.GlucoseSourceRow) []model.GlucoseReading {
	out := make([]model.GlucoseReading, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.GlucoseReading{
			SharePointID:     r.SharePointID,
			TempDevice:       r.DeviceModel,
			RecordedDatetime: r.TimeRecorded,
			ReceivedDatetime: r.TimeReceived,
			GlucoseReading:   normalize.Round2(r.Reading),
			IsManual:         flag(r.ManualReading, true),
		})
	}
	return out
}

// BloodPressureReadings rounds readings to two decimals and maps the manual flag to 0/1.
func BloodPressureReadings(rows []model.BloodPressureSourceRow) []model.BloodPressureReading {
	out := make([]model.BloodPressureReading, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.BloodPressureReading{
			SharePointID:     r.SharePointID,
			TempDevice:       r.DeviceModel,
			RecordedDatetime: r.TimeRecorded,
			ReceivedDatetime: r.TimeReceived,
			SystolicReading:  normalize.Round2(r.Systolic),
			DiastolicReading: normalize.Round2(r.Diastolic),
			IsManual:         flag(r.ManualReading, true),
		})
	}
	return out
}

// VendorGlucose converts vendor API glucose measurements. Device readings
// are never manual.
func VendorGlucose(ms []model.VendorMeasurement) []model.GlucoseReading {
	var out []model.GlucoseReading
	for _, m := range ms {
		if m.Metric != model.MetricGlucose {
			continue
		}
		out = append(out, model.GlucoseReading{
			SharePointID:     m.SharePointID,
			TempDevice:       deviceName(m),
			RecordedDatetime: m.Timestamp,
			ReceivedDatetime: m.Created,
			GlucoseReading:   normalize.Round2(m.Value1),
			IsManual:         flag(&notManual, true),
		})
	}
	return out
}

// VendorBloodPressure converts vendor API blood pressure measurements.
// value_1 is systolic, value_2 diastolic.
func VendorBloodPressure(ms []model.VendorMeasurement) []model.BloodPressureReading {
	var out []model.BloodPressureReading
	for _, m := range ms {
		if m.Metric != model.MetricBloodPressure {
			continue
		}
		out = append(out, model.BloodPressureReading{
			SharePointID:     m.SharePointID,
			TempDevice:       deviceName(m),
			RecordedDatetime: m.Timestamp,
			ReceivedDatetime: m.Created,
			SystolicReading:  normalize.Round2(m.Value1),
			DiastolicReading: normalize.Round2(m.Value2),
			IsManual:         flag(&notManual, true),
		})
	}
	return out
}

var notManual = false

// VendorThrough drops measurements taken after end. The measurement time is
// the device timestamp, else the time the vendor recorded it; measurements
// with neither are kept. It returns the kept measurements and the number dropped.
func VendorThrough(ms []model.VendorMeasurement, end time.Time) ([]model.VendorMeasurement, int) {
	out := make([]model.VendorMeasurement, 0, len(ms))
	for _, m := range ms {
		at := m.Timestamp
		if at == nil {
			at = m.Created
		}
		if at != nil && at.After(end) {
			continue
		}
		out = append(out, m)
	}
	return out, len(ms) - len(out)
}

func deviceName(m model.VendorMeasurement) *string {
	if m.DeviceName == "" {
		return nil
	}
	name := m.DeviceName
	return &name
}

// flag maps a boolean onto 0/1. When trueIsOne is false the mapping is
// inverted. nil stays nil.
func flag(b *bool, trueIsOne bool) *int {
	if b == nil {
		return nil
	}
	v := 0
	if *b == trueIsOne {
		v = 1
	}
	return &v
}
