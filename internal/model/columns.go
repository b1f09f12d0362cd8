package model

// Canonical column names of the DefensePro forensics export schema.
// Individual files may carry a subset, or spell some of these differently
// depending on device firmware; see ColumnVariants.
const (
	ColStartTime      = "Start Time"
	ColEndTime        = "End Time"
	ColDeviceIP       = "Device IP Address"
	ColThreatCategory = "Threat Category"
	ColAttackName     = "Attack Name"
	ColPolicyName     = "Policy Name"
	ColAction         = "Action"
	ColSourceIP       = "Source IP Address"
	ColDestinationIP  = "Destination IP Address"
	ColDirection      = "Direction"
	ColProtocol       = "Protocol"
	ColDuration       = "Duration"
	ColTotalPackets   = "Total Packets"
	ColTotalMbits     = "Total Mbits"
	ColMaxPPS         = "Max pps"
	ColMaxBPS         = "Max bps"
	ColRisk           = "Risk"
	ColDeviceName     = "Device Name"
)

// ColumnVariants lists the spellings observed for columns whose header text
// drifts across device firmware versions. Order expresses preference.
var ColumnVariants = map[string][]string{
	ColStartTime:      {"Start Time", "StartTime", "start_time", "Start_Time"},
	ColEndTime:        {"End Time", "EndTime", "end_time", "End_Time"},
	ColAttackName:     {"Attack Name", "AttackName", "attack_name", "Attack_Name"},
	ColThreatCategory: {"Threat Category", "ThreatCategory", "threat_category", "Threat_Category"},
	ColSourceIP:       {"Source IP Address", "Source IP", "SourceIP", "source_ip"},
	ColDestinationIP:  {"Destination IP Address", "Destination IP", "DestIP", "dest_ip"},
	ColTotalPackets:   {"Total Packets", "Total Packets Dropped", "TotalPackets", "total_packets", "Packets"},
	ColTotalMbits:     {"Total Mbits", "Total Mbits Dropped", "TotalMbits", "total_mbits", "Mbits"},
	ColMaxPPS:         {"Max pps", "MaxPPS", "max_pps", "Max_pps"},
	ColMaxBPS:         {"Max bps", "MaxBPS", "max_bps", "Max_bps"},
}

// ColumnMap resolves canonical column names to the spelling a header really
// uses. Canonical names without any match are absent from the map.
type ColumnMap map[string]string

// MapColumns builds the ColumnMap for a header from ColumnVariants.
func MapColumns(h *Header) ColumnMap {
	m := make(ColumnMap)
	for canonical, variants := range ColumnVariants {
		for _, v := range variants {
			if h.Has(v) {
				m[canonical] = v
				break
			}
		}
	}
	return m
}

// Resolve returns the header spelling for a canonical name, falling back to
// the canonical name itself so unmapped columns still address the header.
func (m ColumnMap) Resolve(canonical string) string {
	if actual, ok := m[canonical]; ok {
		return actual
	}
	return canonical
}
