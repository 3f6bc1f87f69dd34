package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New("test", db, zerolog.Nop()), mock
}

var (
	windowStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	windowEnd   = time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)
)

func TestNotes(t *testing.T) {
	src, mock := newMock(t)
	ts := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM Medical_Notes").
		WithArgs(windowStart, windowEnd).
		WillReturnRows(sqlmock.NewRows([]string{"SharePoint_ID", "Notes", "TimeStamp", "LCH_UPN", "Time_Note", "Note_ID"}).
			AddRow("101", "<p>hi</p>", ts, "Coach One", nil, "n1").
			AddRow(nil, "orphan", ts, "Coach Two", "Follow Up", "n2"))

	notes, err := src.Notes(context.Background(), windowStart, windowEnd)
	require.NoError(t, err)
	require.Len(t, notes, 2)

	assert.Equal(t, "101", *notes[0].SharePointID)
	assert.Nil(t, notes[0].TimeNote)
	assert.True(t, notes[0].TimeStamp.Equal(ts))
	assert.Nil(t, notes[1].SharePointID)
	assert.Equal(t, "Follow Up", *notes[1].TimeNote)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimeLogs(t *testing.T) {
	src, mock := newMock(t)
	mock.ExpectQuery("FROM Time_Log").
		WithArgs(windowStart, windowEnd).
		WillReturnRows(sqlmock.NewRows([]string{"SharPoint_ID", "Recording_Time", "LCH_UPN", "Notes", "Auto_Time", "Start_Time", "End_Time", "Note_ID"}).
			AddRow("101", "0 days 00:10:00", "Coach One", "Follow Up", true, nil, nil, "n1"))

	logs, err := src.TimeLogs(context.Background(), windowStart, windowEnd)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "0 days 00:10:00", *logs[0].RecordingTime)
	assert.True(t, *logs[0].AutoTime)
	assert.Nil(t, logs[0].StartTime)
}

func TestFulfillment(t *testing.T) {
	src, mock := newMock(t)
	mock.ExpectQuery("FROM Fulfillment_All").
		WillReturnRows(sqlmock.NewRows([]string{"Vendor", "Device_ID", "Device_Name", "Patient_ID"}).
			AddRow("Tenovi", "ab-12", "Tenovi BPM", int64(101)).
			AddRow(nil, "cd-34", nil, nil))

	rows, err := src.Fulfillment(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Tenovi", rows[0].Vendor)
	assert.Equal(t, int64(101), *rows[0].PatientID)
	assert.Equal(t, "", rows[1].Vendor)
	assert.Nil(t, rows[1].PatientID)
}

func TestReadings(t *testing.T) {
	src, mock := newMock(t)
	recorded := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM Glucose_Readings").
		WithArgs(windowStart, windowEnd).
		WillReturnRows(sqlmock.NewRows([]string{"SharePoint_ID", "Device_Model", "Time_Recorded", "Time_Recieved", "BG_Reading", "Manual_Reading"}).
			AddRow(int64(101), "Glucometer", recorded, recorded, 110.5, false))
	mock.ExpectQuery("FROM Blood_Pressure_Readings").
		WithArgs(windowStart, windowEnd).
		WillReturnRows(sqlmock.NewRows([]string{"SharePoint_ID", "Device_Model", "Time_Recorded", "Time_Recieved", "Systolic", "Diastolic", "Manual_Reading"}).
			AddRow(int64(101), nil, recorded, nil, 120.0, 80.0, true))

	g, err := src.GlucoseReadings(context.Background(), windowStart, windowEnd)
	require.NoError(t, err)
	require.Len(t, g, 1)
	assert.Equal(t, 110.5, *g[0].Reading)
	assert.False(t, *g[0].ManualReading)

	bp, err := src.BloodPressureReadings(context.Background(), windowStart, windowEnd)
	require.NoError(t, err)
	require.Len(t, bp, 1)
	assert.Nil(t, bp[0].DeviceModel)
	assert.Equal(t, 80.0, *bp[0].Diastolic)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryError(t *testing.T) {
	src, mock := newMock(t)
	mock.ExpectQuery("FROM Medical_Notes").WillReturnError(errors.New("connection reset"))

	_, err := src.Notes(context.Background(), windowStart, windowEnd)
	require.Error(t, err)
	assert.Equal(t, "test source: query notes: connection reset", err.Error())
	assert.Equal(t, "test", src.Name())
}

func TestCloseNil(t *testing.T) {
	var d *DB
	assert.NoError(t, d.Close())
}
