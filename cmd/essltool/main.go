// Command essltool inspects the ESSL translator from the command line.
//
// Usage:
//
//	essltool header --job FILE        # Print the header a translation job produces
//	essltool rename [--essl3] NAME... # Print built-in call name rewrites
//	essltool emulate [--stage S]      # Print the built-in emulation helpers
//	essltool version
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/gogpu/essl"
	"github.com/gogpu/essl/builtins"
	"github.com/gogpu/essl/config"
	"github.com/gogpu/essl/ir"
	"github.com/gogpu/essl/legalize"
)

const toolVersion = "0.1.0-dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds the state shared by subcommands.
type app struct {
	verbose bool
}

func (a *app) logger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func newRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "essltool",
		Short:        "Inspect the ESSL output translator",
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log translation decisions to stderr")

	root.AddCommand(
		a.newHeaderCommand(),
		newRenameCommand(),
		newEmulateCommand(),
		newVersionCommand(),
	)
	return root
}

func (a *app) newHeaderCommand() *cobra.Command {
	var jobPath string
	cmd := &cobra.Command{
		Use:   "header",
		Short: "Translate an empty shader described by a job file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			job, err := config.Load(jobPath)
			if err != nil {
				return err
			}
			module, err := job.Module()
			if err != nil {
				return err
			}
			opts, err := job.Options()
			if err != nil {
				return err
			}
			opts.Logger = a.logger(cmd.ErrOrStderr())

			res, err := essl.TranslateTo(cmd.OutOrStdout(), module, opts)
			if err != nil {
				return err
			}
			opts.Logger.Debug("header written",
				"job", jobPath,
				"version", res.Version.Number(),
				"precision_emulated", res.PrecisionEmulated)
			return nil
		},
	}
	cmd.Flags().StringVar(&jobPath, "job", "", "translation job `file` (TOML)")
	_ = cmd.MarkFlagRequired("job")
	return cmd
}

func newRenameCommand() *cobra.Command {
	var essl3 bool
	cmd := &cobra.Command{
		Use:   "rename NAME...",
		Short: "Print the name each built-in call is emitted as",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, name := range args {
				fmt.Fprintf(out, "%s -> %s\n", name, builtins.TranslateCallName(name, essl3))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&essl3, "essl3", false, "apply the legacy to ESSL 3.00 rewrites")
	return cmd
}

func newEmulateCommand() *cobra.Command {
	var stageName string
	cmd := &cobra.Command{
		Use:   "emulate",
		Short: "Print the helper block for every emulated built-in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stage, err := config.ParseStage(stageName)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), emulationHelpers(stage))
			return err
		},
	}
	addStageFlag(cmd.Flags(), &stageName)
	return cmd
}

func addStageFlag(fs *pflag.FlagSet, stage *string) {
	fs.StringVarP(stage, "stage", "s", ir.StageVertex.String(), "shader `stage` (vertex, fragment, compute, geometry)")
}

// emulationHelpers writes the helpers of every overload the emulator knows.
func emulationHelpers(stage ir.ShaderStage) string {
	emulator := builtins.NewEmulator()
	emulator.Init(legalize.EmulateAtan2FloatFunction)

	f32 := ir.ScalarType{Kind: ir.ScalarFloat}
	emulator.Call("atan", f32, f32)
	for _, size := range []ir.VectorSize{ir.Vec2, ir.Vec3, ir.Vec4} {
		vec := ir.VectorType{Size: size, Scalar: f32}
		emulator.Call("atan", vec, vec)
	}

	var sb strings.Builder
	emulator.WriteHelpers(&sb, stage)
	return sb.String()
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the tool version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "essltool version %s\n", toolVersion)
		},
	}
}
