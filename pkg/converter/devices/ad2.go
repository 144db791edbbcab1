// Package devices provides target-sampler naming conventions
package devices

import (
	"fmt"
	"strings"

	"github.com/james-see/toontrack2ad2/pkg/converter"
)

// AD2 naming constants
const (
	AD2DeviceID     = "ad2"
	AD2FolderPrefix = "ToonTrack"
	AD2MappingExt   = ".AD2Map"
	AD2FillMarker   = "_F_"
	AD2FillType     = "Fill"
)

// AD2 implements the Device interface for XLN Audio Addictive Drums 2
type AD2 struct{}

// NewAD2 creates a new AD2 device handler
func NewAD2() *AD2 {
	return &AD2{}
}

// Name returns the device name
func (a *AD2) Name() string {
	return "Addictive Drums 2"
}

// ID returns the device ID
func (a *AD2) ID() string {
	return AD2DeviceID
}

// FolderName returns the External MIDI folder for a package, e.g.
// "UK DANCE" -> "ToonTrack Uk Dance".
func (a *AD2) FolderName(pkg string) string {
	return AD2FolderPrefix + " " + converter.Title(pkg)
}

// FileName encodes a descriptor into AD2's beat naming convention:
//
//	{package} {group} {groove} {signature}_V_{type} {number}_C_{style}[_F_].mid
//
// The _V_ part becomes the beat's variation, _C_ its style category and a
// trailing _F_ flags the beat as a fill. Prefixing the package keeps groups
// of different packages apart in the browser.
func (a *AD2) FileName(d converter.Descriptor, style string) string {
	fill := ""
	if d.Type == AD2FillType {
		fill = AD2FillMarker
	}
	return fmt.Sprintf("%s %s %s %s_V_%s %s_C_%s%s%s",
		d.Package, d.Group, d.Groove, d.Signature, d.Type, d.Variation, style, fill, converter.MIDIExt)
}

// MappingFileName returns the name AD2 looks for to pick a MIDI map
// automatically: the folder name plus the map extension.
func (a *AD2) MappingFileName(folder string) string {
	return folder + AD2MappingExt
}

// MappingExt returns the MIDI map file extension
func (a *AD2) MappingExt() string {
	return AD2MappingExt
}

// Lookup returns the device registered under id (case-insensitive).
func Lookup(id string) (converter.Device, error) {
	switch strings.ToLower(id) {
	case "", "ad2", "addictive-drums-2":
		return NewAD2(), nil
	default:
		return nil, fmt.Errorf("unknown device %q", id)
	}
}

// Info describes a supported device
type Info struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// List returns the supported devices
func List() []Info {
	return []Info{
		{ID: AD2DeviceID, Name: "Addictive Drums 2", Description: "External MIDI folder naming with optional .AD2Map"},
	}
}
