package domain

// Filter narrows work-order lists and report aggregations.
// Nil slices mean "no constraint" for that dimension.
type Filter struct {
	TechnicianIDs []string `json:"technician_ids"`
	ClientIDs     []string `json:"client_ids"`
	Statuses      []string `json:"statuses"`
	Priorities    []string `json:"priorities"`
	PPFZones      []string `json:"ppf_zones"`
	VehicleModels []string `json:"vehicle_models"`
}

// Empty reports whether the filter constrains nothing.
func (f *Filter) Empty() bool {
	if f == nil {
		return true
	}
	return len(f.TechnicianIDs) == 0 && len(f.ClientIDs) == 0 && len(f.Statuses) == 0 &&
		len(f.Priorities) == 0 && len(f.PPFZones) == 0 && len(f.VehicleModels) == 0
}

// Validate checks that status and priority values are known; other dimensions
// are opaque identifiers. Returns nil for a nil filter.
func (f *Filter) Validate() error {
	if f == nil {
		return nil
	}
	for _, s := range f.Statuses {
		if !Status(s).Valid() {
			return &UnknownFilterValueError{Dimension: "statuses", Value: s}
		}
	}
	for _, p := range f.Priorities {
		if !Priority(p).Valid() {
			return &UnknownFilterValueError{Dimension: "priorities", Value: p}
		}
	}
	return nil
}

// UnknownFilterValueError reports a filter value outside the known vocabulary.
type UnknownFilterValueError struct {
	Dimension string
	Value     string
}

func (e *UnknownFilterValueError) Error() string {
	return "unknown " + e.Dimension + " filter value " + e.Value
}
