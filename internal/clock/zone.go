package clock

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	// embedded zone database so Asia/Jakarta resolves on minimal images
	_ "time/tzdata"
)

// DefaultZone is the zone attached to deadlines stored without an offset.
var DefaultZone = time.FixedZone("UTC+7", 7*60*60)

var offsetZone = regexp.MustCompile(`^(?:UTC|GMT)([+-])(\d{1,2})(?::?(\d{2}))?$`)

// LoadZone resolves an IANA zone name ("Asia/Jakarta") or a fixed offset
// written as "UTC+7", "GMT+07:00" or "UTC-0330". An empty name yields
// DefaultZone.
func LoadZone(name string) (*time.Location, error) {
	if name == "" {
		return DefaultZone, nil
	}
	if m := offsetZone.FindStringSubmatch(name); m != nil {
		hours, _ := strconv.Atoi(m[2])
		minutes := 0
		if m[3] != "" {
			minutes, _ = strconv.Atoi(m[3])
		}
		if hours > 14 || minutes > 59 {
			return nil, fmt.Errorf("invalid zone offset %q", name)
		}
		secs := hours*3600 + minutes*60
		if m[1] == "-" {
			secs = -secs
		}
		return time.FixedZone(name, secs), nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load zone %q: %w", name, err)
	}
	return loc, nil
}
