// Package batch converts every OBJ file in a directory with every configured profile.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/objrom/internal/config"
	"github.com/Faultbox/objrom/internal/convert"
	"github.com/Faultbox/objrom/internal/logger"
	"github.com/Faultbox/objrom/internal/texture"
	"github.com/Faultbox/objrom/pkg/formats"
)

// Batch errors. Per-file failures are reported in FileReport.Err instead.
var (
	ErrInputDirNotFound = errors.New("input directory not found")
	ErrFileNotFound     = errors.New("input file not found")
	ErrNoInput          = errors.New("no .obj files found")
	ErrPanic            = errors.New("conversion panicked")
)

// FileReport is the outcome of one input file.
type FileReport struct {
	Name      string
	Path      string
	Vertices  int
	TexCoords int
	Normals   int
	Faces     int
	Triangles int
	Issues    int
	Texture   texture.Size // Zero when no companion texture was read
	Outputs   []string     // Written files, in profile order
	Skipped   []string     // Profiles that produced empty geometry
	Err       error
}

// Summary aggregates a batch run.
type Summary struct {
	Files     int
	Processed int
	Failed    int
	Vertices  int
	TexCoords int
	Normals   int
	Triangles int
	Reports   []FileReport // In input order
}

// Runner converts the files selected by a config.
type Runner struct {
	cfg       *config.Config
	log       *zap.Logger
	convertFn func(*formats.OBJ, string, config.Profile, texture.Size) (*convert.Result, error)

	// DryRun parses every file and reads texture sizes without converting or writing.
	DryRun bool
}

// New creates a runner. A nil log uses the global logger.
func New(cfg *config.Config, log *zap.Logger) *Runner {
	if log == nil {
		log = logger.Log
	}
	return &Runner{cfg: cfg, log: log, convertFn: convert.Convert}
}

// Run converts with the global logger.
func Run(ctx context.Context, cfg *config.Config) (*Summary, error) {
	return New(cfg, nil).Run(ctx)
}

// Run processes every selected file. Per-file failures never abort the run; the
// returned error is set only for input selection failures or cancellation.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	files, err := r.inputFiles()
	if err != nil {
		return nil, err
	}

	if !r.DryRun {
		if err := os.MkdirAll(r.cfg.Paths.OutputDir, 0755); err != nil {
			return nil, fmt.Errorf("creating output directory: %w", err)
		}
	}

	r.log.Info("converting",
		zap.Int("files", len(files)),
		zap.Int("profiles", len(r.cfg.Profiles)),
		zap.Int("workers", r.cfg.Batch.Workers),
		zap.String("input", r.cfg.Paths.InputDir),
		zap.String("output", r.cfg.Paths.OutputDir),
	)

	reports := make([]FileReport, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.cfg.Batch.Workers, 1))
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			reports[i] = r.safeProcessFile(path)
			return nil
		})
	}
	waitErr := g.Wait()

	sum := summarize(reports)
	r.log.Info("batch complete",
		zap.Int("files", sum.Files),
		zap.Int("processed", sum.Processed),
		zap.Int("failed", sum.Failed),
		zap.Int("vertices", sum.Vertices),
		zap.Int("texcoords", sum.TexCoords),
		zap.Int("normals", sum.Normals),
		zap.Int("triangles", sum.Triangles),
	)
	return sum, waitErr
}

// inputFiles lists *.obj files in the input directory, sorted by name.
func (r *Runner) inputFiles() ([]string, error) {
	dir := r.cfg.Paths.InputDir
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputDirNotFound, dir)
		}
		return nil, fmt.Errorf("reading input directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".obj") {
			continue
		}
		if only := r.cfg.Paths.File; only != "" && e.Name() != only {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}

	if len(files) == 0 {
		if r.cfg.Paths.File != "" {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, filepath.Join(dir, r.cfg.Paths.File))
		}
		return nil, fmt.Errorf("%w in %s", ErrNoInput, dir)
	}
	return files, nil
}

// safeProcessFile turns a panic in one file's pipeline into that file's error.
func (r *Runner) safeProcessFile(path string) (report FileReport) {
	defer func() {
		if p := recover(); p != nil {
			name := filepath.Base(path)
			report = FileReport{Name: name, Path: path, Err: fmt.Errorf("%w: %v", ErrPanic, p)}
			r.log.Error("conversion panicked",
				zap.String("file", name),
				zap.Any("panic", p),
				zap.Stack("stack"),
			)
		}
	}()
	return r.processFile(path)
}

// processFile parses one OBJ and writes one output per profile.
func (r *Runner) processFile(path string) FileReport {
	name := filepath.Base(path)
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	report := FileReport{Name: name, Path: path}
	log := r.log.With(zap.String("file", name))

	obj, err := formats.LoadOBJ(path, r.cfg.Source.Encoding)
	if err != nil {
		report.Err = err
		log.Error("failed to load OBJ", zap.Error(err))
		return report
	}

	report.Vertices = len(obj.Vertices)
	report.TexCoords = len(obj.TexCoords)
	report.Normals = len(obj.Normals)
	report.Faces = len(obj.Faces)
	report.Issues = len(obj.Issues)
	log.Info("parsed",
		zap.Int("vertices", report.Vertices),
		zap.Int("texcoords", report.TexCoords),
		zap.Int("normals", report.Normals),
		zap.Int("faces", report.Faces),
	)
	for _, issue := range obj.Issues {
		log.Warn("skipped line",
			zap.Int("line", issue.Line),
			zap.String("prefix", issue.Prefix),
			zap.Error(issue.Err),
		)
	}

	if r.cfg.Source.Texture {
		report.Texture = r.textureSize(log, path)
	}
	if r.DryRun {
		return report
	}

	var errs []error
	for _, p := range r.cfg.Profiles {
		res, err := r.convertFn(obj, stem, p, report.Texture)
		if err != nil {
			log.Error("conversion failed", zap.String("profile", p.Suffix), zap.Error(err))
			errs = append(errs, fmt.Errorf("profile %s: %w", p.Suffix, err))
			continue
		}
		if res.Empty {
			log.Warn("empty geometry, nothing written", zap.String("profile", p.Suffix))
			report.Skipped = append(report.Skipped, p.Suffix)
			continue
		}
		report.Triangles = res.Mesh.Triangles

		out := filepath.Join(r.cfg.Paths.OutputDir, stem+p.Suffix+r.cfg.Paths.Extension)
		if err := os.WriteFile(out, []byte(res.Text), 0644); err != nil {
			log.Error("failed to write output", zap.String("path", out), zap.Error(err))
			errs = append(errs, fmt.Errorf("profile %s: writing output: %w", p.Suffix, err))
			continue
		}
		report.Outputs = append(report.Outputs, out)

		fields := []zap.Field{
			zap.String("profile", p.Suffix),
			zap.String("path", out),
			zap.Int("triangles", res.Mesh.Triangles),
			zap.Int("reversed", res.Mesh.Reversed),
			zap.Int("materials", res.Materials),
		}
		if res.Mesh.DroppedFaces > 0 {
			fields = append(fields, zap.Int("dropped_faces", res.Mesh.DroppedFaces))
		}
		if res.Atlas != nil {
			fields = append(fields,
				zap.Stringer("uv_mode", res.Atlas.Mode),
				zap.Int("uv_levels", len(res.Atlas.Levels)),
			)
		}
		log.Info("wrote", fields...)
		log.Debug("winding",
			zap.String("profile", p.Suffix),
			zap.Int("explicit_reference", res.Mesh.ExplicitReference),
			zap.Int("geometric_reference", res.Mesh.GeometricReference),
			zap.Int("degenerate", res.Mesh.Degenerate),
		)
	}
	report.Err = errors.Join(errs...)
	return report
}

// textureSize reads the companion texture header, if any. Failures only disable UVs.
func (r *Runner) textureSize(log *zap.Logger, objPath string) texture.Size {
	texPath := texture.FindCompanion(objPath)
	if texPath == "" {
		log.Debug("no companion texture")
		return texture.Size{}
	}
	size, err := texture.ReadSize(texPath)
	if err != nil {
		log.Warn("unreadable texture, UVs disabled", zap.String("texture", texPath), zap.Error(err))
		return texture.Size{}
	}
	log.Debug("texture", zap.String("texture", texPath), zap.Stringer("size", size))
	return size
}

func summarize(reports []FileReport) *Summary {
	sum := &Summary{Files: len(reports), Reports: reports}
	for _, rep := range reports {
		if rep.Err != nil {
			sum.Failed++
			continue
		}
		if rep.Path == "" {
			// Not reached before cancellation.
			continue
		}
		sum.Processed++
		sum.Vertices += rep.Vertices
		sum.TexCoords += rep.TexCoords
		sum.Normals += rep.Normals
		sum.Triangles += rep.Triangles
	}
	return sum
}
