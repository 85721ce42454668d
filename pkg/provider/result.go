package provider

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Counts aggregates classified shots by outcome. Keys are hex bitmask
// strings like "0x0" and "0x3", where bit i is the bit measured into memory
// slot i.
type Counts map[string]int

// HexKey formats a measured bitmask as a canonical counts key.
func HexKey(bits uint64) string {
	return "0x" + strconv.FormatUint(bits, 16)
}

// Total returns the number of shots across all outcomes.
func (c Counts) Total() int {
	var n int
	for _, v := range c {
		n += v
	}
	return n
}

// Probability returns the observed frequency of an outcome key.
func (c Counts) Probability(key string) float64 {
	total := c.Total()
	if total == 0 {
		return 0
	}
	return float64(c[key]) / float64(total)
}

// MostFrequent returns the most common outcome and its count. Ties resolve
// to the smaller key so the answer is deterministic.
func (c Counts) MostFrequent() (string, int) {
	var (
		bestKey string
		bestN   = -1
	)
	for key, n := range c {
		if n > bestN || (n == bestN && key < bestKey) {
			bestKey, bestN = key, n
		}
	}
	if bestN < 0 {
		return "", 0
	}
	return bestKey, bestN
}

// Binary re-keys the counts with zero-padded binary strings of the given
// width, e.g. "0x2" -> "10". Keys that do not parse as hex are kept as-is.
func (c Counts) Binary(width int) Counts {
	out := make(Counts, len(c))
	for key, n := range c {
		v, err := strconv.ParseUint(strings.TrimPrefix(key, "0x"), 16, 64)
		if err != nil {
			out[key] += n
			continue
		}
		out[fmt.Sprintf("%0*b", width, v)] += n
	}
	return out
}

// String renders the counts sorted by key for stable logging.
func (c Counts) String() string {
	keys := make([]string, 0, len(c))
	for key := range c {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var sb strings.Builder
	sb.WriteByte('{')
	for i, key := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s: %d", key, c[key])
	}
	sb.WriteByte('}')
	return sb.String()
}

// IQ is one point in the in-phase/quadrature readout plane.
type IQ [2]float64

// Result is the outcome of one finished job.
type Result struct {
	JobID     string    `json:"job_id"`
	JobName   string    `json:"job_name,omitempty"`
	Backend   string    `json:"backend"`
	Status    JobStatus `json:"status"`
	Success   bool      `json:"success"`
	Shots     int       `json:"shots"`
	MeasLevel int       `json:"meas_level"`
	// Counts holds classified outcomes (meas level 2).
	Counts Counts `json:"counts,omitempty"`
	// MemoryIQ holds one IQ point per shot and memory slot
	// (meas level 1, "single" return).
	MemoryIQ [][]IQ `json:"memory_iq,omitempty"`
	// AvgIQ holds the shot-averaged IQ point per memory slot
	// (meas level 1, "avg" return).
	AvgIQ []IQ `json:"avg_iq,omitempty"`
	// TimeTaken is the wall-clock execution time in seconds.
	TimeTaken float64 `json:"time_taken"`
	// ErrorText carries the failure reason of unsuccessful jobs.
	ErrorText string `json:"error,omitempty"`
}

// GetCounts returns the classified outcome histogram, or ErrBadMeasLevel
// when the job produced kerneled IQ data instead.
func (r *Result) GetCounts() (Counts, error) {
	if r.Counts == nil {
		return nil, fmt.Errorf("result of %s holds no counts: %w", r.JobID, ErrBadMeasLevel)
	}
	return r.Counts, nil
}
