// Package converter turns Toontrack MIDI packages into folders the
// Addictive Drums 2 "External MIDI" browser understands.
package converter

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
)

// Descriptor holds the metadata decoded from one source file's path
type Descriptor struct {
	SourcePath string `json:"source_path"`
	TempoLabel string `json:"tempo"` // Tempo group token, not validated
	Package    string `json:"package"`
	Groove     string `json:"groove"`    // Title-cased
	Signature  string `json:"signature"` // Vendor spelling with '#' ("4#4")
	Group      string `json:"group"`
	Type       string `json:"type"` // Normalized category
	Variation  string `json:"variation"`
}

// String renders the descriptor as the tuple printed while converting.
func (d Descriptor) String() string {
	return fmt.Sprintf("(%q, %q, %q, %q, %q, %q, %q, %q)",
		d.SourcePath, d.TempoLabel, d.Package, d.Groove, d.Signature, d.Group, d.Type, d.Variation)
}

// Device names converted files for a target sampler
type Device interface {
	Name() string
	ID() string
	FolderName(pkg string) string
	FileName(d Descriptor, style string) string
	MappingFileName(folder string) string
	MappingExt() string
}

// Options controls where a conversion writes and how verbose it is
type Options struct {
	OutputDir  string      // Parent of the destination folder (default ".")
	MappingDir string      // Directory searched for the mapping file (default ".")
	DryRun     bool        // Print the plan without copying
	Verify     bool        // Parse every source as a Standard MIDI File first
	Trace      io.Writer   // Progress output (default os.Stdout)
	Logger     *zap.Logger // Debug logging (default no-op)
}

// Converter runs conversions for one device
type Converter struct {
	device     Device
	normalizer *TypeNormalizer
	opts       Options
}

// New creates a new Converter with the specified device and the default type table
func New(device Device) *Converter {
	return NewWithOptions(device, NewTypeNormalizer(DefaultTypeTable()), Options{})
}

// NewWithOptions creates a Converter with an explicit normalizer and options.
// Zero-valued options fall back to their defaults.
func NewWithOptions(device Device, normalizer *TypeNormalizer, opts Options) *Converter {
	if normalizer == nil {
		normalizer = NewTypeNormalizer(DefaultTypeTable())
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	if opts.MappingDir == "" {
		opts.MappingDir = "."
	}
	if opts.Trace == nil {
		opts.Trace = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Converter{device: device, normalizer: normalizer, opts: opts}
}

// GetDevice returns the current device
func (c *Converter) GetDevice() Device {
	return c.device
}

// SetDevice sets the device for conversion
func (c *Converter) SetDevice(device Device) {
	c.device = device
}

// Normalizer returns the type normalizer in use
func (c *Converter) Normalizer() *TypeNormalizer {
	return c.normalizer
}

// Options returns the effective options
func (c *Converter) Options() Options {
	return c.opts
}
