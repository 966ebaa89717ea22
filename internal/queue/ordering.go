package queue

import "sort"

// SortForDisplay orders patients for the board: urgent priority first, then
// ascending check-in time within the same priority. The sort is stable so
// equal keys keep their fetched order.
func SortForDisplay(patients []Patient) {
	sort.SliceStable(patients, func(i, j int) bool {
		a, b := patients[i], patients[j]
		if a.Priority != b.Priority {
			return a.Priority == PriorityUrgent
		}
		return a.CheckInTime.Before(b.CheckInTime)
	})
}
