package notifications

import (
	"testing"
	"time"

	"github.com/photobook/gateway-api/internal/models"
	apperrors "github.com/photobook/gateway-api/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, _ := time.Parse(models.DateLayout, s)
	return t
}

func sample() []models.Booking {
	return []models.Booking{
		{ID: "b1", PhotographerID: models.Ref{ID: "p1", Name: "Ansel"}, Date: "2026-05-01", Status: models.StatusPending},
		{ID: "b2", PhotographerID: models.Ref{ID: "p2", Name: "Berenice"}, Date: "2026-05-10T00:00:00.000Z", Status: models.StatusCanceled},
		{ID: "b3", PhotographerID: models.Ref{ID: "p1"}, Date: "2026-06-02", Status: models.StatusCompleted},
	}
}

func TestFromBookings(t *testing.T) {
	list := FromBookings(sample())
	require.Len(t, list, 3)

	assert.Equal(t, "Your booking with Ansel is now Pending.", list[0].Message)
	assert.Equal(t, "pending", list[0].Status)
	assert.Equal(t, day("2026-05-01"), list[0].Date)
	assert.Equal(t, day("2026-05-10"), list[1].Date)
	assert.Equal(t, "Your booking with your photographer is now Completed.", list[2].Message)
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		name, status, from, to string
		want                   models.BookingStatus
		wantErr                bool
	}{
		{"empty is all", "", "", "", "", false},
		{"all", "all", "", "", "", false},
		{"lower-case status", "confirmed", "", "", models.StatusConfirmed, false},
		{"british spelling", "cancelled", "", "", models.StatusCanceled, false},
		{"unknown status", "archived", "", "", "", true},
		{"bad date", "all", "05/01/2026", "", "", true},
		{"inverted range", "all", "2026-06-01", "2026-05-01", "", true},
		{"valid range", "all", "2026-05-01", "2026-06-01", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ParseFilter(tt.status, tt.from, tt.to)
			if tt.wantErr {
				assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Status)
		})
	}
}

func TestApply(t *testing.T) {
	list := FromBookings(sample())

	all := Apply(list, Filter{})
	require.Len(t, all, 3)
	assert.Equal(t, "b3", all[0].BookingID)

	canceled, err := ParseFilter("cancelled", "", "")
	require.NoError(t, err)
	got := Apply(list, canceled)
	require.Len(t, got, 1)
	assert.Equal(t, "b2", got[0].BookingID)

	may, err := ParseFilter("all", "2026-05-01", "2026-05-10")
	require.NoError(t, err)
	got = Apply(list, may)
	require.Len(t, got, 2)
	assert.Equal(t, "b2", got[0].BookingID)
	assert.Equal(t, "b1", got[1].BookingID)
}

func TestApply_UndatedExcludedFromRange(t *testing.T) {
	list := []models.Notification{{ID: "n1", Message: "hello"}}
	from := day("2026-01-01")

	assert.Len(t, Apply(list, Filter{}), 1)
	assert.Empty(t, Apply(list, Filter{From: &from}))
}

func TestApply_RangeUsesTheTimestampsOwnDay(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	pst := time.FixedZone("PST", -8*3600)
	list := []models.Notification{
		// 2026-05-02 in UTC
		{ID: "early", Date: time.Date(2026, 5, 3, 1, 0, 0, 0, ist)},
		// 2026-05-04 in UTC
		{ID: "late", Date: time.Date(2026, 5, 3, 20, 0, 0, 0, pst)},
	}
	on := day("2026-05-03")

	got := Apply(list, Filter{From: &on, To: &on})
	require.Len(t, got, 2)
	assert.ElementsMatch(t, []string{"early", "late"}, []string{got[0].ID, got[1].ID})
}
