package journal

// AggregateDay folds one day's captures into a DailySnapshot.
//
// Health counters (steps, calories, distance, workouts) are cumulative at
// capture time, so the day's value is the maximum reading, not a sum.
// Heart rate averages the non-zero readings. Environment fields take the
// latest reading that carried them; calendar titles keep first-seen order.
func AggregateDay(captures []Capture) DailySnapshot {
	var snap DailySnapshot

	hrSum, hrN := 0, 0
	seenTitles := map[string]bool{}
	snap.CalendarTitles = []string{}

	for _, c := range captures {
		if h := c.Health; h != nil {
			if h.Steps > snap.Steps {
				snap.Steps = h.Steps
			}
			if h.ActiveCalories > snap.ActiveCalories {
				snap.ActiveCalories = h.ActiveCalories
			}
			if h.DistanceKm > snap.DistanceKm {
				snap.DistanceKm = h.DistanceKm
			}
			if h.SleepHours > snap.SleepHours {
				snap.SleepHours = h.SleepHours
			}
			if h.Workouts > snap.Workouts {
				snap.Workouts = h.Workouts
			}
			if h.HeartRate > 0 {
				hrSum += h.HeartRate
				hrN++
			}
		}
		if e := c.Environment; e != nil {
			if e.TempC != nil {
				snap.TempC = e.TempC
			}
			if e.WeatherDesc != nil {
				snap.WeatherDesc = e.WeatherDesc
			}
			if e.AQI != nil {
				snap.AQI = e.AQI
			}
			if e.UVIndex != nil {
				snap.UVIndex = e.UVIndex
			}
		}
		if l := c.Location; l != nil && l.City != "" {
			city := l.City
			snap.City = &city
		}
		for _, title := range c.CalendarTitles {
			if title == "" || seenTitles[title] {
				continue
			}
			seenTitles[title] = true
			snap.CalendarTitles = append(snap.CalendarTitles, title)
		}
	}

	if hrN > 0 {
		snap.AvgHeartRate = hrSum / hrN
	}
	return snap
}
