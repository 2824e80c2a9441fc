package detector

import (
	"regexp"

	"chargescan/pkg/parser"
)

var (
	appVersionPattern = regexp.MustCompile(`Fw2Ver:\s*([\d.]+)`)
	mcuVersionPattern = regexp.MustCompile(`Get Fw1Ver:\s*([\d.]+)`)
)

// FirmwareInfo summarizes firmware versions observed in the system stream.
// Purely informational: updates are normal operations, but knowing the
// before/after versions helps correlate issues with recent changes.
type FirmwareInfo struct {
	// Current is the application firmware version from the newest entry.
	Current string `json:"current,omitempty"`

	// Previous is the version before the most recent change, if any.
	Previous string `json:"previous,omitempty"`

	// MCU is the controller MCU firmware version from the newest entry.
	MCU string `json:"mcu,omitempty"`

	// UpdateCount is the number of application version changes observed.
	UpdateCount int `json:"update_count"`
}

// TrackFirmware walks the system stream in file order (oldest rotation
// first) and reports the firmware version history.
func TrackFirmware(system *parser.Stream) FirmwareInfo {
	var info FirmwareInfo
	if system == nil {
		return info
	}

	var versions []string
	for i := range system.Entries {
		body := system.Entries[i].Body

		if m := appVersionPattern.FindStringSubmatch(body); m != nil {
			if len(versions) == 0 || versions[len(versions)-1] != m[1] {
				versions = append(versions, m[1])
			}
		}
		if m := mcuVersionPattern.FindStringSubmatch(body); m != nil {
			info.MCU = m[1]
		}
	}

	if len(versions) > 0 {
		info.Current = versions[len(versions)-1]
		info.UpdateCount = len(versions) - 1
	}
	if len(versions) > 1 {
		info.Previous = versions[len(versions)-2]
	}

	return info
}
