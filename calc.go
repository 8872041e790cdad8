package attendance

type pair struct {
	student string
	date    Date
}

// Calculate resolves every roster pair to a presence record. A pair with no
// observation is Absent with zero minutes; a pair with several observations
// uses the earliest arrival. Observations outside the roster are counted as
// ignored. The function is pure: identical inputs yield identical outputs.
func Calculate(window ClassWindow, observations []Observation, roster Roster) ([]PresenceRecord, Summary) {
	inRoster := make(map[pair]bool, len(roster.Students)*len(roster.Dates))
	for _, id := range roster.Students {
		for _, d := range roster.Dates {
			inRoster[pair{id, d}] = true
		}
	}

	var sum Summary
	earliest := make(map[pair]Clock)
	for _, o := range observations {
		p := pair{o.StudentID, o.Date}
		if !inRoster[p] {
			sum.Ignored++
			continue
		}
		if cur, ok := earliest[p]; !ok || o.Arrival.Before(cur) {
			earliest[p] = o.Arrival
		}
	}

	records := make([]PresenceRecord, 0, len(inRoster))
	for _, id := range roster.Students {
		for _, d := range roster.Dates {
			rec := PresenceRecord{StudentID: id, Date: d, Code: Absent}
			if arrival, ok := earliest[pair{id, d}]; ok {
				rec.Code, rec.Minutes = window.Assess(arrival)
			}
			if rec.Code == Present {
				sum.Present++
			} else {
				sum.Absent++
			}
			records = append(records, rec)
		}
	}
	return records, sum
}
