package converter

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
)

// Entry is one planned copy
type Entry struct {
	Descriptor
	DestDir  string `json:"dest_dir"`
	DestName string `json:"dest_name"`
}

// DestPath returns the full destination path of the entry
func (e Entry) DestPath() string {
	return filepath.Join(e.DestDir, e.DestName)
}

// Plan lists every copy a conversion will make
type Plan struct {
	Root    string  `json:"root"`
	Style   string  `json:"style"`
	Folder  string  `json:"folder"` // Destination folder derived from the package folder name
	Entries []Entry `json:"entries"`
}

// Result summarizes a finished conversion
type Result struct {
	Files         int      `json:"files"`
	Dirs          []string `json:"dirs"`
	MappingSource string   `json:"mapping_source,omitempty"`
	MappingDest   string   `json:"mapping_dest,omitempty"`
	DryRun        bool     `json:"dry_run"`
}

// Plan discovers and decodes every MIDI file under root. Nothing is written;
// a single undecodable path fails the whole plan.
func (c *Converter) Plan(root, style string) (*Plan, error) {
	log := c.opts.Logger

	folderPkg, err := PackageDisplayName(filepath.Base(filepath.Clean(root)))
	if err != nil {
		return nil, &DecodeError{Stage: StagePackage, Segment: filepath.Base(root), Path: root, Err: err}
	}

	files, err := Discover(root)
	if err != nil {
		return nil, fmt.Errorf("failed to scan package: %w", err)
	}
	log.Debug("discovered MIDI files", zap.String("root", root), zap.Int("count", len(files)))

	plan := &Plan{
		Root:    root,
		Style:   style,
		Folder:  c.device.FolderName(folderPkg),
		Entries: make([]Entry, 0, len(files)),
	}

	for _, path := range files {
		d, err := DecodePath(root, path, c.normalizer)
		if err != nil {
			return nil, err
		}
		if c.opts.Verify {
			if _, err := InspectMIDIFile(path); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
		}
		entry := Entry{
			Descriptor: d,
			DestDir:    filepath.Join(c.opts.OutputDir, c.device.FolderName(d.Package)),
			DestName:   c.device.FileName(d, style),
		}
		log.Debug("planned", zap.String("source", path), zap.String("dest", entry.DestPath()))
		plan.Entries = append(plan.Entries, entry)
	}

	return plan, nil
}

// Run converts the package at root, labelling every file with style, then
// copies the mapping file if one is found.
func (c *Converter) Run(ctx context.Context, root, style string) (*Result, error) {
	plan, err := c.Plan(root, style)
	if err != nil {
		return nil, err
	}
	return c.Execute(ctx, plan)
}

// Execute performs the copies of a plan. Existing destination files are
// overwritten so reruns replace earlier output.
func (c *Converter) Execute(ctx context.Context, plan *Plan) (*Result, error) {
	out := c.opts.Trace
	res := &Result{DryRun: c.opts.DryRun}
	seen := make(map[string]bool)

	for _, e := range plan.Entries {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		fmt.Fprintln(out, e.Descriptor.String())
		if c.opts.DryRun {
			fmt.Fprintf(out, "  -> %s\n", e.DestPath())
			continue
		}

		if !seen[e.DestDir] {
			if err := EnsureDir(e.DestDir); err != nil {
				return res, fmt.Errorf("failed to create destination folder: %w", err)
			}
			seen[e.DestDir] = true
			res.Dirs = append(res.Dirs, e.DestDir)
		}
		if err := CopyFile(ctx, e.SourcePath, e.DestPath()); err != nil {
			return res, fmt.Errorf("failed to copy %s: %w", e.SourcePath, err)
		}
		res.Files++
	}

	src, dst, err := c.CopyMappingFile(ctx, plan.Folder)
	if err != nil {
		return res, err
	}
	res.MappingSource, res.MappingDest = src, dst
	return res, nil
}

// CopyMappingFile copies the first mapping file found in the mapping
// directory into folder, renamed after the folder. It returns empty paths
// when there is nothing to copy.
func (c *Converter) CopyMappingFile(ctx context.Context, folder string) (string, string, error) {
	out := c.opts.Trace

	matches, err := FindMappingFiles(c.opts.MappingDir, c.device.MappingExt())
	if err != nil {
		return "", "", fmt.Errorf("failed to search for mapping file: %w", err)
	}
	fmt.Fprintf(out, "%q\n", matches)
	if len(matches) == 0 {
		return "", "", nil
	}
	if len(matches) > 1 {
		c.opts.Logger.Debug("several mapping files, using the first", zap.Strings("matches", matches))
	}

	dir := filepath.Join(c.opts.OutputDir, folder)
	dst := filepath.Join(dir, c.device.MappingFileName(folder))
	if c.opts.DryRun {
		fmt.Fprintf(out, "  -> %s\n", dst)
		return matches[0], dst, nil
	}

	if err := EnsureDir(dir); err != nil {
		return "", "", fmt.Errorf("failed to create destination folder: %w", err)
	}
	if err := CopyFile(ctx, matches[0], dst); err != nil {
		return "", "", fmt.Errorf("failed to copy mapping file: %w", err)
	}
	return matches[0], dst, nil
}
