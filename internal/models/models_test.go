package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWeekday(t *testing.T) {
	for raw, want := range map[string]Weekday{"friday": Friday, " MON ": Monday, "Sun": Sunday} {
		got, err := ParseWeekday(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got)
	}
	_, err := ParseWeekday("fr")
	assert.Error(t, err)
	assert.Equal(t, -1, Weekday("Funday").Offset())
}

func TestDateWeekdayAndArithmetic(t *testing.T) {
	d, err := ParseDate("2024-09-09")
	require.NoError(t, err)
	assert.Equal(t, Monday, d.Weekday())
	assert.Equal(t, "2024-09-13", d.AddDays(4).String())
	assert.Equal(t, Friday, d.AddDays(4).Weekday())

	_, err = ParseDate("09/13/2024")
	assert.Error(t, err)
}

func TestDateJSONAndScan(t *testing.T) {
	var payload struct {
		Date Date `json:"date"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2024-09-06"}`), &payload))
	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-09-06"}`, string(out))

	var scanned Date
	require.NoError(t, scanned.Scan(time.Date(2024, 9, 6, 23, 30, 0, 0, time.FixedZone("PHT", 8*3600))))
	assert.Equal(t, "2024-09-06", scanned.String())
	require.NoError(t, scanned.Scan([]byte("2024-09-13T00:00:00Z")))
	assert.Equal(t, "2024-09-13", scanned.String())

	value, err := Date{}.Value()
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestRoleSetDecodesStringOrArray(t *testing.T) {
	var one, many RoleSet
	require.NoError(t, json.Unmarshal([]byte(`"admin, staff"`), &one))
	require.NoError(t, json.Unmarshal([]byte(`["STAFF","staff","ADMIN"]`), &many))

	assert.Equal(t, RoleSet{RoleAdmin, RoleStaff}, one)
	assert.Equal(t, one, many)
	assert.True(t, one.HasAny(RoleStaff))
	assert.False(t, RoleSet{RoleStaff}.Has(RoleAdmin))

	out, err := json.Marshal(RoleSet{RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, `["ADMIN"]`, string(out))
}

func TestRoleSetScan(t *testing.T) {
	var roles RoleSet
	require.NoError(t, roles.Scan([]byte(`{staff,admin}`)))
	assert.Equal(t, RoleSet{RoleAdmin, RoleStaff}, roles)

	value, err := roles.Value()
	require.NoError(t, err)
	assert.Equal(t, `{"ADMIN","STAFF"}`, value)
}

func TestSlotConflictErrorMessage(t *testing.T) {
	err := NewSlotConflictError(SlotConflict{Kind: ConflictRecurring, Title: "FM MIX", Day: Friday, TimeSlot: "12:01-12:55"})
	assert.Equal(t, `Friday 12:01-12:55 is booked weekly by "FM MIX"`, err.Error())
}
