// Package job orchestrates one speech generation from raw request to a
// finished WAV file at a validated destination.
package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/rs/xid"

	"github.com/wavout/wavout/internal/device"
	"github.com/wavout/wavout/internal/speech/codec"
	"github.com/wavout/wavout/internal/speech/engine"
	"github.com/wavout/wavout/internal/staging"
	"github.com/wavout/wavout/pkg/events"
	"github.com/wavout/wavout/pkg/pathguard"
)

// State names one step of a job's lifecycle.
type State string

const (
	StateValidating      State = "validating"
	StateBackendSelected State = "backend_selected"
	StateWorkspaceReady  State = "workspace_ready"
	StateGenerating      State = "generating"
	StateRelocating      State = "relocating"
	StateDone            State = "done"
	StateFailed          State = "failed"
)

var (
	// ErrEmptyText reports a request whose text is empty or whitespace.
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrSpeedOutOfRange reports a speed outside [0.5, 2.0].
	ErrSpeedOutOfRange = errors.New("speed must be between 0.5 and 2.0")
)

// Request carries everything one generation needs.
type Request struct {
	Text         string
	OutputPath   string
	AllowedRoots []string
	Overwrite    bool
	// KeepScratchOnFailure preserves the scratch directory of a failed
	// job for diagnostics instead of removing it.
	KeepScratchOnFailure bool
	Options              engine.Options
}

// Result describes a finished generation.
type Result struct {
	FinalPath       string
	SampleRate      int
	DurationSeconds float64
	Backend         string
	Device          string
}

// Config wires a job's collaborators. Exactly one of Sampler and Filer
// must be set; it determines whether the job stages through a scratch
// directory or writes the destination directly.
type Config struct {
	BackendName string
	Sampler     engine.SampleSynthesizer
	Filer       engine.FileSynthesizer

	Probe     device.HostProbe
	Workspace *staging.Workspace
	Relocator *staging.Relocator
	Emitter   *events.Emitter
	Logger    *slog.Logger
}

// Job runs a single generation. A Job is single-use: Run may be called
// once.
type Job struct {
	id    string
	state State
	cfg   Config
	log   *slog.Logger
}

// New creates a job from the given wiring, filling in host defaults for
// the collaborators left nil.
func New(cfg Config) (*Job, error) {
	if (cfg.Sampler == nil) == (cfg.Filer == nil) {
		return nil, errors.New("job: exactly one of Sampler and Filer must be set")
	}
	if cfg.BackendName == "" {
		return nil, errors.New("job: backend name is required")
	}
	if cfg.Probe == nil {
		cfg.Probe = device.SystemProbe{}
	}
	if cfg.Workspace == nil {
		cfg.Workspace = staging.NewWorkspace("", cfg.Emitter)
	}
	if cfg.Relocator == nil {
		cfg.Relocator = staging.NewRelocator(cfg.Emitter, codec.ProbeWAV)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	id := xid.New().String()
	return &Job{
		id:    id,
		state: StateValidating,
		cfg:   cfg,
		log:   cfg.Logger.With(slog.String("job_id", id), slog.String("backend", cfg.BackendName)),
	}, nil
}

// ID returns the job's unique identifier.
func (j *Job) ID() string { return j.id }

// State returns the job's current lifecycle state.
func (j *Job) State() State { return j.state }

// Run executes the full lifecycle. On any error the job lands in the
// failed state with the error describing the step that broke; the
// destination is never left holding a partial artifact and an acquired
// scratch directory is always released.
func (j *Job) Run(ctx context.Context, req Request) (*Result, error) {
	res, err := j.run(ctx, req)
	if err != nil {
		failedIn := j.state
		j.transition(ctx, StateFailed)
		_ = j.cfg.Emitter.Emit(ctx, events.JobFailed, j.id, &events.JobFailedData{
			State: string(failedIn),
			Error: err.Error(),
		})
		return nil, err
	}
	return res, nil
}

func (j *Job) run(ctx context.Context, req Request) (*Result, error) {
	opts := req.Options

	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyText
	}
	if opts.Speed != 0 && (opts.Speed < 0.5 || opts.Speed > 2.0) {
		return nil, fmt.Errorf("%w: got %g", ErrSpeedOutOfRange, opts.Speed)
	}
	dest, err := pathguard.Validate(req.OutputPath, req.AllowedRoots)
	if err != nil {
		return nil, err
	}

	capability, err := device.Select(j.cfg.Probe)
	if err != nil {
		return nil, err
	}
	opts.Device = capability.String()
	j.transition(ctx, StateBackendSelected)
	_ = j.cfg.Emitter.Emit(ctx, events.BackendSelected, j.id, &events.BackendSelectedData{
		Backend:    j.cfg.BackendName,
		Capability: opts.Device,
	})

	_ = j.cfg.Emitter.Emit(ctx, events.GenerationStarted, j.id, &events.GenerationData{
		Backend:    j.cfg.BackendName,
		TextLength: len(req.Text),
		Voice:      opts.Voice,
	})

	var res *Result
	if j.cfg.Sampler != nil {
		res, err = j.runInMemory(ctx, req, dest, opts)
	} else {
		res, err = j.runStaged(ctx, req, dest, opts)
	}
	if err != nil {
		return nil, err
	}
	res.Backend = j.cfg.BackendName
	res.Device = opts.Device

	j.transition(ctx, StateDone)
	_ = j.cfg.Emitter.Emit(ctx, events.GenerationCompleted, j.id, &events.GenerationData{
		Backend:    j.cfg.BackendName,
		TextLength: len(req.Text),
		Voice:      opts.Voice,
	})
	return res, nil
}

// runInMemory handles sample-shape backends: the rendering never touches
// disk until it is encoded straight into the guarded destination.
func (j *Job) runInMemory(ctx context.Context, req Request, dest pathguard.ValidatedPath, opts engine.Options) (*Result, error) {
	j.transition(ctx, StateGenerating)
	syn, err := j.cfg.Sampler.Synthesize(ctx, req.Text, opts)
	if err != nil {
		return nil, fmt.Errorf("synthesize: %w", err)
	}
	if len(syn.Samples) == 0 {
		return nil, errors.New("synthesize: no audio generated")
	}

	f, err := staging.CreateDestination(dest, req.Overwrite)
	if err != nil {
		return nil, err
	}
	if err := codec.EncodeWAV(f, syn.Samples, syn.SampleRate); err != nil {
		f.Close()
		os.Remove(dest.String())
		return nil, err
	}
	if err := f.Close(); err != nil {
		os.Remove(dest.String())
		return nil, fmt.Errorf("close destination: %w", err)
	}

	return &Result{
		FinalPath:       dest.String(),
		SampleRate:      syn.SampleRate,
		DurationSeconds: float64(len(syn.Samples)/2) / float64(syn.SampleRate),
	}, nil
}

// runStaged handles file-shape backends: render into a private scratch
// directory, then relocate the artifact to the destination.
func (j *Job) runStaged(ctx context.Context, req Request, dest pathguard.ValidatedPath, opts engine.Options) (res *Result, err error) {
	scratch, err := j.cfg.Workspace.Acquire(ctx, j.id)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil && req.KeepScratchOnFailure {
			j.log.WarnContext(ctx, "keeping scratch dir for diagnostics", slog.String("path", scratch.Path()))
			return
		}
		j.cfg.Workspace.Release(ctx, j.id, scratch)
	}()
	j.transition(ctx, StateWorkspaceReady)

	j.transition(ctx, StateGenerating)
	pattern, err := j.cfg.Filer.SynthesizeToDir(ctx, req.Text, opts, scratch.Path())
	if err != nil {
		return nil, fmt.Errorf("synthesize: %w", err)
	}

	j.transition(ctx, StateRelocating)
	moved, err := j.cfg.Relocator.Relocate(ctx, j.id, scratch, pattern, dest, staging.RelocateOptions{
		Overwrite:  req.Overwrite,
		SingleFile: true,
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		FinalPath:       moved.FinalPath,
		SampleRate:      moved.SampleRate,
		DurationSeconds: moved.DurationSeconds,
	}, nil
}

func (j *Job) transition(ctx context.Context, to State) {
	from := j.state
	j.state = to
	j.log.InfoContext(ctx, "job state changed",
		slog.String("from", string(from)),
		slog.String("to", string(to)))
	_ = j.cfg.Emitter.Emit(ctx, events.JobStateChanged, j.id, &events.JobStateChangedData{
		FromState: string(from),
		ToState:   string(to),
	})
}
