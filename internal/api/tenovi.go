package api

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/clinicload/internal/model"
	"github.com/gyeh/clinicload/internal/normalize"
)

const (
	DefaultTenoviURL = "https://api2.tenovi.com"
	createdLayout    = "2006-01-02T15:04:05Z"
)

// TenoviDevice is a hardware-integration device assigned to a patient.
type TenoviDevice struct {
	ID        string `json:"id"`
	PatientID string `json:"patient_id"`
	Status    string `json:"status"`
	Device    struct {
		Name         string `json:"name"`
		HardwareUUID string `json:"hardware_uuid"`
	} `json:"device"`
}

// TenoviMeasurement is one reading reported by a device.
type TenoviMeasurement struct {
	Metric     string     `json:"metric"`
	DeviceName string     `json:"device_name"`
	Value1     *float64   `json:"value_1"`
	Value2     *float64   `json:"value_2"`
	Created    *time.Time `json:"created"`
	Timestamp  *time.Time `json:"timestamp"`
}

// Tenovi reads devices and measurements from the Tenovi API.
type Tenovi struct {
	rest *Client
	log  zerolog.Logger
}

// NewTenovi creates a client scoped to clientDomain. An empty baseURL uses
// the public API host.
func NewTenovi(baseURL, clientDomain, apiKey string, log zerolog.Logger) *Tenovi {
	if baseURL == "" {
		baseURL = DefaultTenoviURL
	}
	log = log.With().Str("api", "tenovi").Logger()
	rest := NewClient(baseURL+"/clients/"+url.PathEscape(clientDomain), log).
		SetHeader("Authorization", "Api-Key "+apiKey)
	return &Tenovi{rest: rest, log: log}
}

// Devices lists every device.
func (t *Tenovi) Devices(ctx context.Context) ([]TenoviDevice, error) {
	var devices []TenoviDevice
	if err := t.rest.Get(ctx, "/hwi/hwi-devices", nil, &devices); err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	return devices, nil
}

// Measurements lists a device's readings, optionally filtered by metric and
// by creation time. A zero since applies no time filter.
func (t *Tenovi) Measurements(ctx context.Context, deviceID, metric string, since time.Time) ([]TenoviMeasurement, error) {
	params := map[string]string{}
	if metric != "" {
		params["metric__name"] = metric
	}
	if !since.IsZero() {
		params["created__gte"] = since.UTC().Format(createdLayout)
	}
	var ms []TenoviMeasurement
	endpoint := fmt.Sprintf("/hwi/hwi-devices/%s/measurements/", url.PathEscape(deviceID))
	if err := t.rest.Get(ctx, endpoint, params, &ms); err != nil {
		return nil, fmt.Errorf("list measurements for %s: %w", deviceID, err)
	}
	return ms, nil
}

// Collect gathers the given metrics from every device since the given time,
// attributed to the device's patient. A device whose measurements cannot be
// fetched is logged and skipped.
func (t *Tenovi) Collect(ctx context.Context, metrics []string, since time.Time) ([]model.VendorMeasurement, error) {
	devices, err := t.Devices(ctx)
	if err != nil {
		return nil, err
	}

	var out []model.VendorMeasurement
	failed := 0
	for _, d := range devices {
		patient := normalize.ParseID(&d.PatientID)
		for _, metric := range metrics {
			ms, err := t.Measurements(ctx, d.ID, metric, since)
			if err != nil {
				failed++
				t.log.Warn().Err(err).Str("device", d.ID).Str("metric", metric).Msg("skipping device measurements")
				continue
			}
			for _, m := range ms {
				name := m.DeviceName
				if name == "" {
					name = d.Device.Name
				}
				metricName := m.Metric
				if metricName == "" {
					metricName = metric
				}
				out = append(out, model.VendorMeasurement{
					SharePointID: patient,
					DeviceName:   name,
					Metric:       metricName,
					Value1:       m.Value1,
					Value2:       m.Value2,
					Timestamp:    m.Timestamp,
					Created:      m.Created,
				})
			}
		}
	}
	t.log.Info().
		Int("devices", len(devices)).
		Int("measurements", len(out)).
		Int("failed", failed).
		Msg("vendor measurements fetched")
	return out, nil
}
