// Package main is the entry point for toontrack2ad2 CLI
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/james-see/toontrack2ad2/pkg/api"
	"github.com/james-see/toontrack2ad2/pkg/config"
	"github.com/james-see/toontrack2ad2/pkg/converter"
	"github.com/james-see/toontrack2ad2/pkg/converter/devices"
	"github.com/james-see/toontrack2ad2/pkg/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	outputDir  string
	mappingDir string
	deviceName string
	typesFile  string
	dryRun     bool
	verify     bool
	verbose    bool
	serverPort int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "toontrack2ad2 <package> <style>",
	Short: "Convert Toontrack MIDI packages for Addictive Drums 2",
	Long: `toontrack2ad2 copies the MIDI files of an installed Toontrack package into
a single folder named the way Addictive Drums 2 expects for External MIDI.

Source files are never changed. Reruns overwrite the previous output.
If a .AD2Map file is found in the current directory it is copied into the
new folder so AD2 picks the right MIDI mapping automatically.

Examples:
  toontrack2ad2 000353@UK_DANCE Electronic
  toontrack2ad2 convert 000334@FUNK Funk -o ~/AD2/External
  toontrack2ad2 inspect 000334@FUNK
  toontrack2ad2 tui
  toontrack2ad2 serve --port 8080`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	Args:          cobra.ExactArgs(2),
	RunE:          runConvert,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var convertCmd = &cobra.Command{
	Use:   "convert <package> <style>",
	Short: "Copy a package into an Addictive Drums 2 External MIDI folder",
	Long: `Decodes every .mid file under <package> and copies it into
"ToonTrack <Package Name>", labelling every beat with the <style> category.`,
	Args: cobra.ExactArgs(2),
	RunE: runConvert,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <package>",
	Short: "Show decoded metadata and MIDI details without copying",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "Print the active category substitution table",
	Args:  cobra.NoArgs,
	RunE:  runTypes,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
	RunE:  runTUI,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&deviceName, "device", "d", "ad2", "Target device (ad2)")
	rootCmd.PersistentFlags().StringVarP(&typesFile, "types", "t", "", "YAML file with category substitutions")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging to stderr")

	// Conversion flags, shared by the root command and convert
	for _, cmd := range []*cobra.Command{rootCmd, convertCmd} {
		cmd.Flags().StringVarP(&outputDir, "output", "o", ".", "Directory the converted folder is created in")
		cmd.Flags().StringVarP(&mappingDir, "map-dir", "m", ".", "Directory searched for a .AD2Map file")
		cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print what would be copied without copying")
		cmd.Flags().BoolVar(&verify, "verify", false, "Reject files that are not valid Standard MIDI Files")
	}

	// serve command
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "Server port")

	// Add commands
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(typesCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
}

func newLogger() (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	return zap.NewDevelopment()
}

func newConverter(log *zap.Logger) (*converter.Converter, error) {
	device, err := devices.Lookup(deviceName)
	if err != nil {
		return nil, err
	}
	normalizer, err := config.Normalizer(typesFile)
	if err != nil {
		return nil, err
	}
	return converter.NewWithOptions(device, normalizer, converter.Options{
		OutputDir:  outputDir,
		MappingDir: mappingDir,
		DryRun:     dryRun,
		Verify:     verify,
		Trace:      os.Stdout,
		Logger:     log,
	}), nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	pkg, style := args[0], args[1]

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	conv, err := newConverter(log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := conv.Run(ctx, pkg, style)
	if err != nil {
		return err
	}

	if res.DryRun {
		fmt.Println("Dry run complete, nothing copied.")
		return nil
	}
	fmt.Printf("Copied %d files", res.Files)
	for _, dir := range res.Dirs {
		fmt.Printf(" -> %s", dir)
	}
	fmt.Println()
	if res.MappingDest != "" {
		fmt.Printf("Copied mapping %s -> %s\n", res.MappingSource, res.MappingDest)
	}
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	pkg := args[0]

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	conv, err := newConverter(log)
	if err != nil {
		return err
	}

	plan, err := conv.Plan(pkg, "<style>")
	if err != nil {
		return err
	}

	fmt.Printf("Package folder: %s\n", plan.Folder)
	for _, e := range plan.Entries {
		fmt.Println(e.Descriptor.String())
		fmt.Printf("  name: %s\n", e.DestName)

		info, err := converter.InspectMIDIFile(e.SourcePath)
		if err != nil {
			fmt.Printf("  midi: %v\n", err)
			continue
		}
		fmt.Printf("  midi: %d tracks, %d events, %d ticks/quarter", info.Tracks, info.Events, info.TicksPerQuarter)
		if info.Tempo > 0 {
			fmt.Printf(", %.1f bpm", info.Tempo)
		}
		if sig := info.Signature(); sig != "" {
			fmt.Printf(", %s", sig)
			if sig != e.Signature {
				fmt.Printf(" (folder says %s)", e.Signature)
			}
		}
		fmt.Println()
	}
	fmt.Printf("%d files\n", len(plan.Entries))
	return nil
}

func runTypes(cmd *cobra.Command, args []string) error {
	normalizer, err := config.Normalizer(typesFile)
	if err != nil {
		return err
	}
	out, err := config.MarshalTypeTable(normalizer)
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	normalizer, err := config.Normalizer(typesFile)
	if err != nil {
		return err
	}
	return tui.Run(tui.Config{OutputDir: ".", MappingDir: ".", Normalizer: normalizer})
}

func runServe(cmd *cobra.Command, args []string) error {
	normalizer, err := config.Normalizer(typesFile)
	if err != nil {
		return err
	}
	fmt.Printf("Starting API server on port %d...\n", serverPort)
	return api.StartServer(serverPort, normalizer)
}
