package converter

import (
	"bytes"
	"fmt"
	"os"

	"gitlab.com/gomidi/midi/v2/smf"
)

// MIDIInfo summarizes a Standard MIDI File. Tempo is the BPM of the first
// tempo event and Numerator/Denominator the first time signature; each is
// zero when the file has no such event.
type MIDIInfo struct {
	Tracks          int     `json:"tracks"`
	TicksPerQuarter uint16  `json:"ticks_per_quarter"`
	Tempo           float64 `json:"tempo"`
	Numerator       uint8   `json:"numerator"`
	Denominator     uint8   `json:"denominator"`
	Events          int     `json:"events"`
}

// Signature formats the time signature the way package folders spell it ("4#4").
func (i MIDIInfo) Signature() string {
	if i.Numerator == 0 || i.Denominator == 0 {
		return ""
	}
	return fmt.Sprintf("%d#%d", i.Numerator, i.Denominator)
}

// InspectMIDIFile reads a MIDI file and summarizes it
func InspectMIDIFile(filename string) (*MIDIInfo, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read MIDI file: %w", err)
	}
	return InspectMIDI(data)
}

// InspectMIDI parses MIDI data and reports its tracks, resolution, first
// tempo and first time signature.
func InspectMIDI(data []byte) (*MIDIInfo, error) {
	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMIDI, err)
	}

	info := &MIDIInfo{Tracks: len(s.Tracks)}
	if mt, ok := s.TimeFormat.(smf.MetricTicks); ok {
		info.TicksPerQuarter = mt.Resolution()
	}

	for _, track := range s.Tracks {
		for _, ev := range track {
			info.Events++
			msg := ev.Message

			// Tempo meta message (FF 51 03 tt tt tt)
			if info.Tempo == 0 && len(msg) >= 6 && msg[0] == 0xFF && msg[1] == 0x51 && msg[2] == 0x03 {
				microsecondsPerBeat := uint32(msg[3])<<16 | uint32(msg[4])<<8 | uint32(msg[5])
				if microsecondsPerBeat > 0 {
					info.Tempo = 60000000.0 / float64(microsecondsPerBeat)
				}
			}

			// Time signature meta message (FF 58 04 nn dd cc bb), dd is a power of two
			if info.Numerator == 0 && len(msg) >= 5 && msg[0] == 0xFF && msg[1] == 0x58 && msg[2] == 0x04 {
				info.Numerator = msg[3]
				if msg[4] < 8 {
					info.Denominator = 1 << msg[4]
				}
			}
		}
	}

	return info, nil
}
