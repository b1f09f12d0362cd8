package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"
)

var attackNames = [][2]string{
	{"SYN Flood", "DoS"},
	{"UDP Flood", "DoS"},
	{"DNS Amplification", "DoS"},
	{"HTTP Flood", "Application"},
	{"ICMP Flood", "DoS"},
	{"Memcached Reflection", "DoS"},
	{"Network Scan", "Anomaly"},
	{"Packet Anomalies", "Anomaly"},
}

var risks = []string{"Low", "Medium", "High", "Critical"}
var protocols = []string{"TCP", "UDP", "ICMP"}
var actions = []string{"Drop", "Forward", "Challenge"}

func main() {
	outputFile := flag.String("o", "test_events.csv", "Output CSV file path")
	rowCount := flag.Int("c", 10000, "Number of event rows to generate")
	months := flag.Int("m", 6, "How many months the events span")
	dayFirst := flag.Bool("dayfirst", false, "Write dates day-first (DD.MM.YYYY) instead of month-first")
	seed := flag.Int64("seed", 0, "Random seed (0 seeds from time)")
	flag.Parse()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	f, err := os.Create(*outputFile)
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"S.No", "Start Time", "End Time", "Device IP Address", "Threat Category",
		"Attack Name", "Policy Name", "Action", "Source IP Address",
		"Destination IP Address", "Protocol", "Duration", "Total Packets",
		"Total Mbits", "Max pps", "Max bps", "Risk", "Device Name",
	}
	if err := w.Write(header); err != nil {
		log.Fatalf("Failed to write header: %v", err)
	}

	layout := "01.02.2006 15:04:05"
	if *dayFirst {
		layout = "02.01.2006 15:04:05"
	}

	// Span whole months starting from the 1st so month validation has
	// interior events to find.
	rangeStart := time.Date(time.Now().Year()-1, time.January, 1, 0, 0, 0, 0, time.UTC)
	rangeSeconds := int64(*months) * 30 * 86400

	log.Printf("Generating %d rows into %s (seed %d)...", *rowCount, *outputFile, *seed)

	for i := 0; i < *rowCount; i++ {
		start := rangeStart.Add(time.Duration(rng.Int63n(rangeSeconds)) * time.Second)
		duration := rng.Intn(7200)
		end := start.Add(time.Duration(duration) * time.Second)
		attack := attackNames[rng.Intn(len(attackNames))]

		row := []string{
			fmt.Sprintf("%d", i+1),
			start.Format(layout),
			end.Format(layout),
			fmt.Sprintf("10.0.0.%d", rng.Intn(8)+1),
			attack[1],
			attack[0],
			"Default Policy",
			actions[rng.Intn(len(actions))],
			fmt.Sprintf("%d.%d.%d.%d", rng.Intn(223)+1, rng.Intn(256), rng.Intn(256), rng.Intn(254)+1),
			fmt.Sprintf("192.168.1.%d", rng.Intn(32)+1),
			protocols[rng.Intn(len(protocols))],
			fmt.Sprintf("%d", duration),
			fmt.Sprintf("%d", rng.Intn(10_000_000)),
			fmt.Sprintf("%.2f", rng.Float64()*1000),
			fmt.Sprintf("%d", rng.Intn(5_000_000)),
			fmt.Sprintf("%d", rng.Int63n(10_000_000_000)),
			risks[rng.Intn(len(risks))],
			fmt.Sprintf("DefensePro-%d", rng.Intn(4)+1),
		}
		if err := w.Write(row); err != nil {
			log.Fatalf("Failed to write row %d: %v", i, err)
		}
	}

	log.Printf("Done: %s", *outputFile)
}
