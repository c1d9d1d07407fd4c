// objconv converts Wavefront OBJ meshes into ROM-resident C++ arrays.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/objrom/internal/batch"
	"github.com/Faultbox/objrom/internal/config"
	"github.com/Faultbox/objrom/internal/logger"
)

// Exit codes.
const (
	exitOK          = 0
	exitConfig      = 1
	exitInputDir    = 2
	exitFileMissing = 3
	exitFailures    = 4
	exitNoInput     = 10
)

func main() {
	os.Exit(run())
}

func run() int {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		return exitConfig
	}

	if path := config.WriteConfigPath(); path != "" {
		if err := cfg.SaveTo(path); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
			return exitConfig
		}
		fmt.Printf("Wrote config: %s\n", path)
		return exitOK
	}
	if config.SaveConfigRequested() {
		path, err := cfg.Save()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
			return exitConfig
		}
		fmt.Printf("Saved config: %s\n", path)
		return exitOK
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.FileConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		return exitConfig
	}
	defer logger.Sync()

	logger.Info("=== objconv ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := batch.New(cfg, logger.Log)
	runner.DryRun = config.InfoOnly()

	sum, err := runner.Run(ctx)
	switch {
	case errors.Is(err, batch.ErrInputDirNotFound):
		logger.Error("input directory missing", zap.Error(err))
		return exitInputDir
	case errors.Is(err, batch.ErrFileNotFound):
		logger.Error("input file missing", zap.Error(err))
		return exitFileMissing
	case errors.Is(err, batch.ErrNoInput):
		logger.Warn("nothing to convert", zap.Error(err))
		return exitNoInput
	case err != nil:
		logger.Error("batch aborted", zap.Error(err))
		return exitFailures
	}

	if runner.DryRun {
		printInfo(sum)
	}
	if sum.Failed > 0 {
		return exitFailures
	}
	return exitOK
}

// printInfo writes one line per parsed file.
func printInfo(sum *batch.Summary) {
	for _, rep := range sum.Reports {
		if rep.Err != nil {
			fmt.Printf("%-32s error: %v\n", rep.Name, rep.Err)
			continue
		}
		tex := "-"
		if rep.Texture.Known() {
			tex = rep.Texture.String()
		}
		fmt.Printf("%-32s V=%d VT=%d N=%d F=%d issues=%d texture=%s\n",
			rep.Name, rep.Vertices, rep.TexCoords, rep.Normals, rep.Faces, rep.Issues, tex)
	}
	fmt.Printf("\n%d files, %d vertices, %d texcoords, %d normals\n",
		sum.Files, sum.Vertices, sum.TexCoords, sum.Normals)
}
