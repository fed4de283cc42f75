package models

import (
	"encoding/json"
	"testing"

	apperrors "github.com/photobook/gateway-api/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRef_AcceptsIDOrPopulatedObject(t *testing.T) {
	var b Booking
	raw := `{"_id":"b1","userId":"u1","photographerId":{"_id":"p1","name":"Ansel"},"status":"Pending"}`
	require.NoError(t, json.Unmarshal([]byte(raw), &b))

	assert.Equal(t, "b1", b.ID)
	assert.Equal(t, "u1", b.UserID.ID)
	assert.Empty(t, b.UserID.Name)
	assert.Equal(t, "p1", b.PhotographerID.ID)
	assert.Equal(t, "Ansel", b.PhotographerID.Name)
	assert.Equal(t, StatusPending, b.Status)
}

func TestRef_NullAndAltID(t *testing.T) {
	var b Booking
	require.NoError(t, json.Unmarshal([]byte(`{"id":"b2","userId":null,"photographerId":{"id":"p2"}}`), &b))
	assert.Equal(t, "b2", b.ID)
	assert.Empty(t, b.UserID.ID)
	assert.Equal(t, "p2", b.PhotographerID.ID)
}

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"Pending", "Confirmed", "Completed", "Canceled"} {
		st, ok := ParseStatus(s)
		assert.True(t, ok, s)
		assert.Equal(t, s, string(st))
	}
	for _, s := range []string{"pending", "Cancelled", "Done", ""} {
		_, ok := ParseStatus(s)
		assert.False(t, ok, s)
	}
}

func TestBooking_Day(t *testing.T) {
	b := Booking{ID: "b", Date: "2024-05-01T00:00:00.000Z"}
	day, err := b.Day()
	require.NoError(t, err)
	assert.Equal(t, 2024, day.Year())
	assert.Equal(t, 5, int(day.Month()))

	b.Date = "May 1"
	_, err = b.Day()
	assert.Error(t, err)
}

func TestDecodeIdentity(t *testing.T) {
	id, err := DecodeIdentity(RoleUser, []byte(`{"id":"u1","name":"Dana","email":"dana@example.com"}`))
	require.NoError(t, err)
	assert.Equal(t, "u1", id.IdentityID())
	assert.Equal(t, RoleUser, id.IdentityRole())
	assert.Equal(t, "Dana", id.DisplayName())

	id, err = DecodeIdentity(RolePhotographer, []byte(`{"_id":"p1","name":"Ansel","email":"a@x.io","specialization":["Wedding"]}`))
	require.NoError(t, err)
	assert.Equal(t, RolePhotographer, id.IdentityRole())

	_, err = DecodeIdentity(RoleAdmin, []byte(`{"name":"no id","email":"a@x.io"}`))
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))

	_, err = DecodeIdentity(RoleUser, []byte(`not json`))
	assert.Error(t, err)

	_, err = DecodeIdentity(RoleNone, []byte(`{}`))
	assert.Error(t, err)
}

func TestValidate_Credentials(t *testing.T) {
	tests := []struct {
		name    string
		creds   Credentials
		wantErr string
	}{
		{"valid", Credentials{Email: "dana@example.com", Password: "secret1"}, ""},
		{"bad email", Credentials{Email: "dana@example", Password: "secret1"}, "Enter a valid email"},
		{"short password", Credentials{Email: "dana@example.com", Password: "12345"}, "password must be at least 6 characters"},
		{"missing email", Credentials{Password: "secret1"}, "email is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.creds)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			appErr := apperrors.As(err)
			assert.Equal(t, apperrors.CodeValidationFailed, appErr.Code)
			assert.Equal(t, tt.wantErr, appErr.Message)
		})
	}
}

func TestValidate_RegistrationPhoneLength(t *testing.T) {
	req := RegisterUserRequest{Name: "Dana", Email: "dana@example.com", Password: "secret1", Phone: "12345"}
	err := Validate(&req)
	require.Error(t, err)
	assert.Equal(t, "phone must be at least 10 characters", apperrors.As(err).Message)

	req.Phone = "5551234567"
	assert.NoError(t, Validate(&req))
}

func TestValidate_BookSessionDate(t *testing.T) {
	req := BookSessionRequest{PhotographerID: "P1", Date: "2024-05-01", TimeSlot: "10:00 AM", Location: "Park"}
	assert.NoError(t, Validate(&req))

	req.Date = "01/05/2024"
	err := Validate(&req)
	require.Error(t, err)
	assert.Contains(t, apperrors.As(err).Message, "YYYY-MM-DD")
}

func TestValidate_RatingRange(t *testing.T) {
	req := RatingRequest{PhotographerID: "p", BookingID: "b", Rating: 6}
	assert.Error(t, Validate(&req))
	req.Rating = 0
	assert.Error(t, Validate(&req))
	req.Rating = 5
	assert.NoError(t, Validate(&req))
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("photographer")
	require.NoError(t, err)
	assert.Equal(t, RolePhotographer, r)

	_, err = ParseRole("root")
	assert.Error(t, err)
	assert.Equal(t, "none", RoleNone.String())
}
