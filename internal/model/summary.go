package model

// AttackType aggregates all events sharing one attack name.
type AttackType struct {
	Count    int64  `json:"count"`
	Category string `json:"threat_category"`
}

// AttackTypeDetail pairs a threat category with an attack name for listings.
type AttackTypeDetail struct {
	Category string `json:"category"`
	Name     string `json:"name"`
}

// IPCount is one entry of a top-talker leaderboard.
type IPCount struct {
	IP    string `json:"ip"`
	Count int64  `json:"count"`
}

// LongestAttack describes the single longest event observed, with the full
// source row that produced it.
type LongestAttack struct {
	Seconds  float64           `json:"seconds"`
	Duration string            `json:"duration"`
	Details  map[string]string `json:"details,omitempty"`
}

// Summary is a finalized accumulator: counts, sorted lists and provenance
// snapshots, all plain values safe to serialize and never mutated again.
// Monthly summaries carry Key/Label; the holistic summary leaves them empty
// and fills the holistic-only distributions instead.
type Summary struct {
	Key   string `json:"key,omitempty"`
	Label string `json:"label,omitempty"`

	TotalEvents          int64    `json:"total_events"`
	UniqueSourceIPs      int      `json:"unique_source_ips"`
	UniqueDestinationIPs int      `json:"unique_destination_ips"`
	SourceIPs            []string `json:"source_ips"`
	DestinationIPs       []string `json:"destination_ips"`

	AttackTypes       map[string]AttackType `json:"attack_types"`
	AttackTypeDetails []AttackTypeDetail    `json:"attack_type_details"`

	Protocols  map[string]int64 `json:"protocols"`
	Actions    map[string]int64 `json:"actions"`
	Devices    map[string]int64 `json:"devices"`
	Policies   map[string]int64 `json:"policies"`
	RiskLevels map[string]int64 `json:"risk_levels,omitempty"`

	HourlyDistribution [24]int64        `json:"hourly_distribution"`
	DailyDistribution  map[string]int64 `json:"daily_distribution,omitempty"`

	TotalPackets float64 `json:"total_packets"`
	TotalMbits   float64 `json:"total_mbits"`

	MaxPPS        float64           `json:"max_pps"`
	MaxBPS        float64           `json:"max_bps"`
	MaxPPSDetails map[string]string `json:"max_pps_details,omitempty"`
	MaxBPSDetails map[string]string `json:"max_bps_details,omitempty"`

	TopSourceIPs      []IPCount `json:"top_source_ips,omitempty"`
	TopDestinationIPs []IPCount `json:"top_destination_ips,omitempty"`

	LongestAttack          *LongestAttack `json:"longest_attack,omitempty"`
	AverageDurationSeconds float64        `json:"average_duration_seconds,omitempty"`
}
