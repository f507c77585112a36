package timecode

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalid is returned for input that matches none of the accepted shapes.
var ErrInvalid = errors.New("invalid timecode")

var (
	rePlain = regexp.MustCompile(`^\d+(\.\d+)?$`)
	reUnits = regexp.MustCompile(`^(?:\s*\d+\s*[hms])+\s*$`)
	rePair  = regexp.MustCompile(`(\d+)\s*([hms])`)
	reClock = regexp.MustCompile(`^\d{1,2}:\d{2}(:\d{2})?$`)
)

// Parse converts user input into whole seconds.
// Accepted, tried in order:
//   - "90", "90.7"           plain seconds, fraction truncated
//   - "1h2m3s", "2m", "45s"  unit pairs in any order
//   - "1:23", "01:02:03"     mm:ss or hh:mm:ss
func Parse(s string) (int, error) {
	in := strings.TrimSpace(s)
	if in == "" {
		return 0, ErrInvalid
	}

	if rePlain.MatchString(in) {
		f, err := strconv.ParseFloat(in, 64)
		if err != nil || math.Floor(f) > math.MaxInt32 {
			return 0, ErrInvalid
		}
		return int(math.Floor(f)), nil
	}

	lower := strings.ToLower(in)
	if reUnits.MatchString(lower) {
		return parseUnits(lower)
	}

	if reClock.MatchString(in) {
		return parseClock(in)
	}

	return 0, ErrInvalid
}

func parseUnits(s string) (int, error) {
	total := 0
	for _, m := range rePair.FindAllStringSubmatch(s, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, ErrInvalid
		}
		var mul int
		switch m[2] {
		case "h":
			mul = 3600
		case "m":
			mul = 60
		default:
			mul = 1
		}
		if n > (math.MaxInt32-total)/mul {
			return 0, ErrInvalid
		}
		total += n * mul
	}
	return total, nil
}

func parseClock(s string) (int, error) {
	parts := strings.Split(s, ":")
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, ErrInvalid
		}
		nums[i] = n
	}

	switch len(nums) {
	case 2:
		mm, ss := nums[0], nums[1]
		if ss >= 60 {
			return 0, ErrInvalid
		}
		return mm*60 + ss, nil
	case 3:
		hh, mm, ss := nums[0], nums[1], nums[2]
		if mm >= 60 || ss >= 60 {
			return 0, ErrInvalid
		}
		return hh*3600 + mm*60 + ss, nil
	}
	return 0, ErrInvalid
}

// Format renders seconds as m:ss, or h:mm:ss from one hour up.
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
