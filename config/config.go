// Package config loads translation jobs from TOML files.
//
// A job names the stage, the requested version and every switch the
// translator takes:
//
//	stage = "vertex"
//	version = 100
//	options = ["enforce_output_to_essl3", "select_view_in_nv_glsl_vertex_shader"]
//	clamping = "user-defined"
//
//	[extensions]
//	GL_OVR_multiview = "require"
//
//	[resources]
//	webgl_debug_shader_precision = true
//
//	[layout]
//	num_views = 2
//
//	[pragma]
//	stdgl_invariant_all = true
//
//	[hashing]
//	enabled = true
package config

import (
	"bytes"
	"fmt"
	"os"
	"slices"

	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/essl"
	"github.com/gogpu/essl/glsl"
	"github.com/gogpu/essl/ir"
	"github.com/gogpu/essl/legalize"
	"github.com/gogpu/essl/names"
)

// Job is one translation request as written in a job file.
type Job struct {
	Stage              string            `toml:"stage"`
	Version            int               `toml:"version"`
	CompileOptions     []string          `toml:"options"`
	Clamping           string            `toml:"clamping"`
	ForceHighPrecision bool              `toml:"force_high_precision"`
	DefaultPrecision   string            `toml:"default_precision"`
	Extensions         map[string]string `toml:"extensions"`
	Resources          Resources         `toml:"resources"`
	Layout             Layout            `toml:"layout"`
	Pragma             Pragma            `toml:"pragma"`
	Hashing            Hashing           `toml:"hashing"`
}

// Resources mirrors legalize.Resources.
type Resources struct {
	NVShaderFramebufferFetch  bool `toml:"nv_shader_framebuffer_fetch"`
	NVDrawBuffers             bool `toml:"nv_draw_buffers"`
	WEBGLDebugShaderPrecision bool `toml:"webgl_debug_shader_precision"`
}

// Layout holds stage-level layout declarations.
type Layout struct {
	NumViews  int      `toml:"num_views"`
	LocalSize []uint32 `toml:"local_size"`
}

// Pragma holds the pragmas the shader declares.
type Pragma struct {
	DebugShaderPrecision bool `toml:"debug_shader_precision"`
	STDGLInvariantAll    bool `toml:"stdgl_invariant_all"`
}

// Hashing enables identifier hashing with FNV-1a.
type Hashing struct {
	Enabled bool `toml:"enabled"`
}

// Load reads and checks a job file.
func Load(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job file: %w", err)
	}
	job, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return job, nil
}

// Parse decodes and checks a job. Unknown keys are rejected.
func Parse(data []byte) (*Job, error) {
	var job Job
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&job); err != nil {
		return nil, fmt.Errorf("failed to parse job: %w", err)
	}
	if err := job.check(); err != nil {
		return nil, err
	}
	return &job, nil
}

// check converts every named setting once so that errors surface at load
// time.
func (j *Job) check() error {
	if _, err := j.stage(); err != nil {
		return err
	}
	if _, err := j.Options(); err != nil {
		return err
	}
	if _, err := parsePrecision(j.DefaultPrecision); err != nil {
		return err
	}
	if n := len(j.Layout.LocalSize); n != 0 && n != 3 {
		return fmt.Errorf("layout.local_size has %d entries, want 3", n)
	}
	return nil
}

// Options converts the job into translator options.
func (j *Job) Options() (essl.Options, error) {
	var opts essl.Options

	if j.Version != 0 {
		v, err := legalize.ParseVersion(j.Version)
		if err != nil {
			return essl.Options{}, err
		}
		opts.Version = v
	}

	for _, name := range j.CompileOptions {
		flag, err := legalize.ParseCompileOption(name)
		if err != nil {
			return essl.Options{}, err
		}
		opts.CompileOptions = opts.CompileOptions.With(flag)
	}

	strategy, err := glsl.ParseClampingStrategy(j.Clamping)
	if err != nil {
		return essl.Options{}, err
	}
	opts.ClampingStrategy = strategy

	if len(j.Extensions) > 0 {
		opts.Extensions = make(legalize.Table, len(j.Extensions))
		for name, behavior := range j.Extensions {
			ext, err := legalize.ParseExtension(name)
			if err != nil {
				return essl.Options{}, err
			}
			b, err := legalize.ParseBehavior(behavior)
			if err != nil {
				return essl.Options{}, fmt.Errorf("extension %s: %w", name, err)
			}
			opts.Extensions[ext] = b
		}
	}

	opts.Resources = legalize.Resources{
		NVShaderFramebufferFetch:  j.Resources.NVShaderFramebufferFetch,
		NVDrawBuffers:             j.Resources.NVDrawBuffers,
		WEBGLDebugShaderPrecision: j.Resources.WEBGLDebugShaderPrecision,
	}
	opts.ForceHighPrecision = j.ForceHighPrecision
	if j.Hashing.Enabled {
		opts.HashFunction = names.FNV64
	}
	return opts, nil
}

// Module builds an empty shader for the job's stage carrying its pragmas,
// layout and default precision. Translating it yields the header the job
// produces around an empty main().
func (j *Job) Module() (*ir.Module, error) {
	stage, err := j.stage()
	if err != nil {
		return nil, err
	}
	prec, err := parsePrecision(j.DefaultPrecision)
	if err != nil {
		return nil, err
	}

	module := &ir.Module{
		Stage: stage,
		Types: []ir.Type{{Inner: ir.ScalarType{Kind: ir.ScalarFloat}}},
		Functions: []ir.Function{{
			Symbol: ir.Symbol{ID: 1, Name: names.EntryPointName},
		}},
		Pragma: ir.Pragma{
			DebugShaderPrecision: j.Pragma.DebugShaderPrecision,
			STDGLInvariantAll:    j.Pragma.STDGLInvariantAll,
		},
		Layout: ir.Layout{NumViews: j.Layout.NumViews},
	}
	if prec != ir.PrecisionUndefined {
		module.DefaultPrecisions = []ir.DefaultPrecision{{Precision: prec, Type: 0}}
	}
	if size := j.Layout.LocalSize; len(size) == 3 {
		module.Layout.LocalSize = &[3]uint32{size[0], size[1], size[2]}
	}
	return module, nil
}

var stages = []ir.ShaderStage{ir.StageVertex, ir.StageFragment, ir.StageCompute, ir.StageGeometry}

// ParseStage returns the stage with the given lowercase name.
func ParseStage(name string) (ir.ShaderStage, error) {
	i := slices.IndexFunc(stages, func(s ir.ShaderStage) bool { return s.String() == name })
	if i < 0 {
		return 0, fmt.Errorf("unknown shader stage %q", name)
	}
	return stages[i], nil
}

func (j *Job) stage() (ir.ShaderStage, error) {
	return ParseStage(j.Stage)
}

func parsePrecision(name string) (ir.Precision, error) {
	switch name {
	case "":
		return ir.PrecisionUndefined, nil
	case "lowp":
		return ir.PrecisionLow, nil
	case "mediump":
		return ir.PrecisionMedium, nil
	case "highp":
		return ir.PrecisionHigh, nil
	default:
		return ir.PrecisionUndefined, fmt.Errorf("unknown precision %q", name)
	}
}
