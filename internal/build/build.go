// SPDX-License-Identifier: MPL-2.0

package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/cloudtek/smartbuild/internal/config"
	"github.com/cloudtek/smartbuild/internal/metrics"
	"github.com/cloudtek/smartbuild/internal/target"
	"github.com/cloudtek/smartbuild/internal/toolchain"
	"github.com/cloudtek/smartbuild/internal/version"
	"github.com/cloudtek/smartbuild/pkg/fsutil"
	"github.com/cloudtek/smartbuild/pkg/manifest"
)

// ErrNilManifest is returned by New without a manifest.
var ErrNilManifest = errors.New("manifest is required")

type (
	// Build runs the fixed target set against one manifest. The manifest,
	// settings and version are read-only once New returns.
	Build struct {
		manifest  *manifest.Manifest
		resolver  manifest.Resolver
		settings  *config.Settings
		version   version.Fields
		toolchain toolchain.Toolchain
		fs        fsutil.FS
		logger    *log.Logger
		metrics   *metrics.Recorder
		engine    *target.Engine

		final    manifest.FinalArtifact
		hasFinal bool

		coverageMu sync.Mutex
	}

	// Option configures a Build.
	Option func(*Build)
)

// WithFS replaces the filesystem used for existence checks and cleaning.
func WithFS(fs fsutil.FS) Option {
	return func(b *Build) {
		b.fs = fs
	}
}

// WithLogger sets the logger for target progress.
func WithLogger(l *log.Logger) Option {
	return func(b *Build) {
		b.logger = l
	}
}

// WithMetrics records target durations in r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(b *Build) {
		b.metrics = r
	}
}

// New validates the manifest, selects the final coverage artifact and
// registers every target.
func New(m *manifest.Manifest, s *config.Settings, v version.Fields, tc toolchain.Toolchain, opts ...Option) (*Build, error) {
	if m == nil {
		return nil, ErrNilManifest
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	b := &Build{
		manifest:  m,
		resolver:  manifest.NewResolver(s.Root, m),
		settings:  s,
		version:   v,
		toolchain: tc,
		fs:        fsutil.OS{},
		logger:    log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(b)
	}

	b.final, b.hasFinal = manifest.SelectFinal(m, b.resolver, b.fs.FileExists)
	if b.hasFinal {
		b.logger.Debug("selected final coverage artifact", "module", b.final.Module, "artifact", b.final.Artifact)
	} else {
		b.logger.Warn("no artifact has a test project; coverage will never be finalized")
	}

	b.engine = target.New(
		target.WithDefault(DefaultTarget),
		target.WithOnStart(func(name string) {
			b.logger.Info("starting", "target", name)
		}),
		target.WithOnSkip(func(name string) {
			b.logger.Debug("already completed", "target", name)
		}),
		target.WithOnFinish(b.onFinish),
	)
	if err := b.register(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Build) onFinish(name string, elapsed time.Duration, err error) {
	b.metrics.ObserveTarget(name, elapsed, err)
	if err != nil {
		b.logger.Error("failed", "target", name, "duration", elapsed, "err", err)
		return
	}
	b.logger.Info("finished", "target", name, "duration", elapsed)
}

func (b *Build) register() error {
	bodies := map[string]target.Body{
		TargetClean:   b.clean,
		TargetRestore: b.restore,
		TargetCompile: b.compile,
		TargetPack:    b.pack,
		TargetPublish: b.publish,
		TargetPush:    b.push,
	}
	for _, c := range Categories {
		bodies[string(c)] = b.test(c)
	}

	for _, d := range definitions {
		t := target.Target{
			Name:        d.name,
			Description: d.description,
			DependsOn:   d.dependsOn,
			Before:      d.before,
			Body:        bodies[d.name],
		}
		if err := b.engine.Register(t); err != nil {
			return err
		}
	}
	return b.engine.Validate()
}

// Final returns the artifact whose coverage run writes the report.
func (b *Build) Final() (manifest.FinalArtifact, bool) {
	return b.final, b.hasFinal
}

// Resolver returns the path resolver for the manifest.
func (b *Build) Resolver() manifest.Resolver {
	return b.resolver
}

// Targets lists the registered targets in registration order.
func (b *Build) Targets() []target.Target {
	return b.engine.Targets()
}

// Plan returns the execution order of names without running anything.
func (b *Build) Plan(names ...string) ([]string, error) {
	return b.engine.Plan(names...)
}

// Run checks that the settings cover every scheduled target, then executes
// names and their dependencies.
func (b *Build) Run(ctx context.Context, names ...string) error {
	order, err := b.engine.Plan(names...)
	if err != nil {
		return err
	}
	if err := b.settings.ValidateFor(order); err != nil {
		return err
	}
	return b.engine.Run(ctx, names...)
}

// State returns the state of a target.
func (b *Build) State(name string) target.State {
	return b.engine.State(name)
}

// forEach calls fn for every artifact matching filter, in declared order,
// with at most settings.Parallelism calls in flight. The first error cancels
// the remaining calls.
func (b *Build) forEach(ctx context.Context, filter func(manifest.Pair) bool, fn func(context.Context, manifest.Pair) error) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(b.settings.Parallelism, 1))
	for _, p := range b.manifest.Pairs() {
		if filter != nil && !filter(p) {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(ctx, p); err != nil {
				return fmt.Errorf("%s/%s: %w", p.Module, p.Artifact.Name, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func isPackage(p manifest.Pair) bool {
	return p.Artifact.IsPackage()
}

func (b *Build) clean(_ context.Context) error {
	for _, dir := range b.resolver.OutputDirs() {
		b.logger.Debug("cleaning", "dir", dir)
		if err := b.fs.EnsureCleanDirectory(dir); err != nil {
			return fmt.Errorf("clean %s: %w", dir, err)
		}
	}
	return nil
}

func (b *Build) restore(ctx context.Context) error {
	return b.forEach(ctx, nil, func(ctx context.Context, p manifest.Pair) error {
		return b.toolchain.Restore(ctx, toolchain.RestoreSettings{
			Project: b.resolver.SourceProject(p.Module, p.Artifact),
		})
	})
}

func (b *Build) compile(ctx context.Context) error {
	return b.forEach(ctx, nil, func(ctx context.Context, p manifest.Pair) error {
		return b.toolchain.Build(ctx, toolchain.BuildSettings{
			Project:       b.resolver.SourceProject(p.Module, p.Artifact),
			Configuration: b.settings.Configuration.String(),
			Version:       b.version,
		})
	})
}

func (b *Build) pack(ctx context.Context) error {
	return b.forEach(ctx, isPackage, func(ctx context.Context, p manifest.Pair) error {
		return b.toolchain.Pack(ctx, toolchain.PackSettings{
			Project:       b.resolver.SourceProject(p.Module, p.Artifact),
			Configuration: b.settings.Configuration.String(),
			Version:       b.version,
			OutputDir:     b.resolver.OutputDir(p.Artifact),
		})
	})
}

func (b *Build) publish(ctx context.Context) error {
	return b.forEach(ctx, isPackage, func(ctx context.Context, p manifest.Pair) error {
		return b.toolchain.Publish(ctx, toolchain.PublishSettings{
			Project:       b.resolver.SourceProject(p.Module, p.Artifact),
			Configuration: b.settings.Configuration.String(),
			Version:       b.version,
			OutputDir:     b.resolver.OutputDir(p.Artifact),
		})
	})
}

func (b *Build) push(ctx context.Context) error {
	return b.forEach(ctx, isPackage, func(ctx context.Context, p manifest.Pair) error {
		return b.toolchain.Push(ctx, toolchain.PushSettings{
			Package: b.resolver.PackageFile(p.Artifact, b.version.PackageVersion),
			Source:  b.settings.RegistryURL,
			APIKey:  b.settings.APIKey,
		})
	})
}
