package schema

// Datapoint is a single (timestamp, value) sample received by an ingestion
// listener or held in the cache. An absent value is represented by Value
// being NaN (see Float.IsNaN).
type Datapoint struct {
	Timestamp int64
	Value     Float
}

// IsAbsent reports whether the datapoint's value is the absent marker.
func (d Datapoint) IsAbsent() bool {
	return d.Value.IsNaN()
}
