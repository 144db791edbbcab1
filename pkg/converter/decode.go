package converter

import (
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Path levels below the directory that contains the package folder:
//
//	000353@UK_DANCE / S001@UK DANCE_4#4 / 100-A@Grooves / Variation_01.mid
const (
	levelPackage = iota
	levelGroove
	levelTempo
	levelVariation
	minLevels
)

var (
	rePackage   = regexp.MustCompile(`^[^@]*@(?P<name>[^@]*)`)
	reGroove    = regexp.MustCompile(`^[^@]*@(?P<groove>[^@_]*)_(?P<signature>[^@_]*)(?:@.*)?$`)
	reTempo     = regexp.MustCompile(`^(?P<tempo>[^-]*)-(?P<group>[^-@]*)@(?P<type>[^-@]*)$`)
	reVariation = regexp.MustCompile(`\p{Nd}+`)
)

// Title capitalizes the first letter of every word and lowercases the rest.
// Apostrophes do not start a new word: "rock'n'roll" -> "Rock'n'roll".
func Title(s string) string {
	return cases.Title(language.Und).String(s)
}

// PackageDisplayName turns a package folder name such as "000353@UK_DANCE"
// into "UK DANCE".
func PackageDisplayName(folder string) (string, error) {
	m, err := match(rePackage, folder)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(m["name"], "_", " "), nil
}

// DecodePath decodes a file found under packageRoot. The path is made
// relative to the directory holding the package folder so absolute and
// relative roots decode the same way.
func DecodePath(packageRoot, path string, normalizer *TypeNormalizer) (Descriptor, error) {
	base := filepath.Dir(filepath.Clean(packageRoot))
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return Descriptor{}, &DecodeError{Stage: StageLayout, Segment: path, Path: path, Err: err}
	}
	d, err := Decode(rel, normalizer)
	if err != nil {
		return Descriptor{}, err
	}
	d.SourcePath = path
	return d, nil
}

// Decode parses a path of the form
// <id>@<PACKAGE>/<prefix>@<groove>_<signature>/<tempo>-<group>@<type>/<variation>...
// split on the host path separator.
func Decode(path string, normalizer *TypeNormalizer) (Descriptor, error) {
	parts := strings.Split(path, string(filepath.Separator))
	if len(parts) < minLevels {
		return Descriptor{}, &DecodeError{Stage: StageLayout, Segment: path, Path: path, Err: ErrMalformedPath}
	}
	fail := func(stage Stage, segment string, err error) (Descriptor, error) {
		return Descriptor{}, &DecodeError{Stage: stage, Segment: segment, Path: path, Err: err}
	}

	pkg, err := PackageDisplayName(parts[levelPackage])
	if err != nil {
		return fail(StagePackage, parts[levelPackage], err)
	}

	groove, err := match(reGroove, parts[levelGroove])
	if err != nil {
		return fail(StageGroove, parts[levelGroove], err)
	}

	tempo, err := match(reTempo, parts[levelTempo])
	if err != nil {
		return fail(StageTempo, parts[levelTempo], err)
	}

	variation := reVariation.FindString(parts[levelVariation])
	if variation == "" {
		return fail(StageVariation, parts[levelVariation], ErrNoVariationNumber)
	}

	if normalizer == nil {
		normalizer = NewTypeNormalizer(DefaultTypeTable())
	}

	return Descriptor{
		SourcePath: path,
		TempoLabel: tempo["tempo"],
		Package:    pkg,
		Groove:     Title(groove["groove"]),
		Signature:  groove["signature"],
		Group:      tempo["group"],
		Type:       normalizer.Normalize(tempo["type"]),
		Variation:  variation,
	}, nil
}

// match returns the named groups of re in s.
func match(re *regexp.Regexp, s string) (map[string]string, error) {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return nil, ErrMalformedPath
	}
	groups := make(map[string]string, len(m))
	for i, name := range re.SubexpNames() {
		if name != "" {
			groups[name] = m[i]
		}
	}
	return groups, nil
}
