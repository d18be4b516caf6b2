package tree

// Dataset is a named table of records with its candidate features and
// target.
type Dataset struct {
	Name     string
	Records  []Record
	Features []string
	Target   string
}

// PlayTennis is Quinlan's 14-day weather table: should we play given the
// outlook, temperature, humidity and wind?
func PlayTennis() Dataset {
	rows := [][5]string{
		{"sunny", "hot", "high", "false", "no"},
		{"sunny", "hot", "high", "true", "no"},
		{"overcast", "hot", "high", "false", "yes"},
		{"rain", "mild", "high", "false", "yes"},
		{"rain", "cool", "normal", "false", "yes"},
		{"rain", "cool", "normal", "true", "no"},
		{"overcast", "cool", "normal", "true", "yes"},
		{"sunny", "mild", "high", "false", "no"},
		{"sunny", "cool", "normal", "false", "yes"},
		{"rain", "mild", "normal", "false", "yes"},
		{"sunny", "mild", "normal", "true", "yes"},
		{"overcast", "mild", "high", "true", "yes"},
		{"overcast", "hot", "normal", "false", "yes"},
		{"rain", "mild", "high", "true", "no"},
	}

	records := make([]Record, len(rows))
	for i, r := range rows {
		records[i] = Record{
			"outlook":     r[0],
			"temperature": r[1],
			"humidity":    r[2],
			"windy":       r[3],
			"play":        r[4],
		}
	}
	return Dataset{
		Name:     "PlayTennis",
		Records:  records,
		Features: []string{"outlook", "temperature", "humidity", "windy"},
		Target:   "play",
	}
}
