package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSortForDisplay(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	at := func(h, m int) time.Time { return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

	patients := []Patient{
		{ID: "A", Priority: PriorityUrgent, CheckInTime: at(10, 0)},
		{ID: "B", Priority: PriorityStandard, CheckInTime: at(9, 0)},
		{ID: "C", Priority: PriorityUrgent, CheckInTime: at(9, 30)},
	}

	SortForDisplay(patients)

	got := []string{patients[0].ID, patients[1].ID, patients[2].ID}
	assert.Equal(t, []string{"C", "A", "B"}, got, "urgent first by check-in time, then standard")
}

func TestSortForDisplayStable(t *testing.T) {
	tie := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	patients := []Patient{
		{ID: "first", Priority: PriorityStandard, CheckInTime: tie},
		{ID: "second", Priority: PriorityStandard, CheckInTime: tie},
	}

	SortForDisplay(patients)

	assert.Equal(t, "first", patients[0].ID)
}
