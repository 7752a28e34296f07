package quota

// LimitKey identifies the resource being limited, usually a provider name.
type LimitKey string

// LimitDefinition is the server-side definition for a limit.
type LimitDefinition struct {
	Key           LimitKey `json:"key" yaml:"key"`
	Capacity      uint64   `json:"capacity" yaml:"capacity"`
	WindowSeconds int      `json:"window_seconds" yaml:"window_seconds"`
	Unit          string   `json:"unit" yaml:"unit"`
	Description   string   `json:"description" yaml:"description"`
}

// ReserveRequest asks to reserve capacity for a lease.
type ReserveRequest struct {
	LeaseID string   `json:"lease_id"`
	Key     LimitKey `json:"key"`
	Units   uint64   `json:"units"`
}

// ReserveResponse reports whether a reservation was allowed.
type ReserveResponse struct {
	Allowed      bool   `json:"allowed"`
	RetryAfterMs int    `json:"retry_after_ms"`
	Error        string `json:"error"`
}

// CompleteRequest reports actual usage for a lease.
type CompleteRequest struct {
	LeaseID   string   `json:"lease_id"`
	Key       LimitKey `json:"key"`
	UnitsUsed uint64   `json:"units_used"`
}

// CompleteResponse reports whether completion succeeded.
type CompleteResponse struct {
	Ok    bool   `json:"ok"`
	Error string `json:"error"`
}
