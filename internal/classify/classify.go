// Package classify turns raw measurements from indicator forms into status
// labels using fixed thresholds. Nothing here returns an error: malformed
// input degrades to StatusUnknown so half-filled forms still render.
package classify

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Status is a discrete classification label.
type Status string

const (
	StatusAprovado  Status = "Aprovado"
	StatusReprovado Status = "Reprovado"
	StatusUnknown   Status = "-"
)

// ProvaTeoricaMinNota is the passing grade of the written exam.
const ProvaTeoricaMinNota = 8.0

// TPEPRMaxSeconds is the slowest passing equipment-donning time.
const TPEPRMaxSeconds = 59

// TAFAgeCutoff is the first age evaluated against the relaxed band.
const TAFAgeCutoff = 40

// TAFResult is the outcome of a physical fitness test.
type TAFResult struct {
	Status Status `json:"status"`
	Nota   int    `json:"nota"`
}

type tafTier struct {
	maxSeconds int
	nota       int
}

var (
	tafBandUnder40 = []tafTier{{120, 10}, {140, 9}, {160, 8}, {180, 7}}
	tafBandFrom40  = []tafTier{{180, 10}, {200, 9}, {220, 8}, {240, 7}}
)

// TAFStatus classifies a fitness test time for the given age.
func TAFStatus(age int, tempo string) TAFResult {
	seconds, ok := TimeToSeconds(tempo)
	if !ok || age <= 0 {
		return TAFResult{Status: StatusUnknown}
	}
	band := tafBandUnder40
	if age >= TAFAgeCutoff {
		band = tafBandFrom40
	}
	for _, tier := range band {
		if seconds <= tier.maxSeconds {
			return TAFResult{Status: StatusAprovado, Nota: tier.nota}
		}
	}
	return TAFResult{Status: StatusReprovado}
}

// ProvaTeoricaStatus classifies a written exam grade.
func ProvaTeoricaStatus(nota float64) Status {
	if math.IsNaN(nota) {
		return StatusUnknown
	}
	if nota >= ProvaTeoricaMinNota {
		return StatusAprovado
	}
	return StatusReprovado
}

// TPEPRStatus classifies an equipment-donning time.
func TPEPRStatus(tempo string) Status {
	seconds, ok := TimeToSeconds(tempo)
	if !ok {
		return StatusUnknown
	}
	if seconds <= TPEPRMaxSeconds {
		return StatusAprovado
	}
	return StatusReprovado
}

// Percentage returns delivered/expected as a rounded integer percentage.
func Percentage(delivered, expected float64) int {
	if expected == 0 || math.IsNaN(delivered) || math.IsNaN(expected) {
		return 0
	}
	return int(math.Floor(delivered/expected*100 + 0.5))
}

// TimeToSeconds parses "mm:ss" into seconds. Whitespace around parts is ignored.
func TimeToSeconds(tempo string) (int, bool) {
	minutes, seconds, ok := splitClock(tempo)
	if !ok {
		return 0, false
	}
	return minutes*60 + seconds, true
}

// SecondsToTime formats seconds as zero-padded "mm:ss". Negative input yields "00:00".
func SecondsToTime(total int) string {
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// TimeToMinutes parses "HH:MM" into minutes.
func TimeToMinutes(hhmm string) (int, bool) {
	hours, minutes, ok := splitClock(hhmm)
	if !ok {
		return 0, false
	}
	return hours*60 + minutes, true
}

// MinutesToTime formats minutes as "HH:MM".
func MinutesToTime(total int) string {
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

var (
	mmssPattern = regexp.MustCompile(`^(\d{1,2}):([0-5]\d)$`)
	hhmmPattern = regexp.MustCompile(`^([01]?\d|2[0-3]):([0-5]\d)$`)
)

// ValidMMSS reports whether tempo is "mm:ss" with minutes not above maxMinutes.
func ValidMMSS(tempo string, maxMinutes int) bool {
	m := mmssPattern.FindStringSubmatch(strings.TrimSpace(tempo))
	if m == nil {
		return false
	}
	minutes, _ := strconv.Atoi(m[1])
	return minutes <= maxMinutes
}

// ValidHHMM reports whether value is a clock time "HH:MM".
func ValidHHMM(value string) bool {
	return hhmmPattern.MatchString(strings.TrimSpace(value))
}

func splitClock(value string) (int, int, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, 0, false
	}
	left, right, found := strings.Cut(value, ":")
	if !found {
		return 0, 0, false
	}
	a, err := strconv.Atoi(strings.TrimSpace(left))
	if err != nil || a < 0 {
		return 0, 0, false
	}
	b, err := strconv.Atoi(strings.TrimSpace(right))
	if err != nil || b < 0 {
		return 0, 0, false
	}
	return a, b, true
}
