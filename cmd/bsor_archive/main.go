// Command bsor_archive decodes BSOR replay files and archives them to the
// configured storage backend, optionally writing per-replay metrics to
// InfluxDB.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/OCAP2/bsor/internal/config"
	"github.com/OCAP2/bsor/internal/influx"
	"github.com/OCAP2/bsor/internal/logging"
	intOtel "github.com/OCAP2/bsor/internal/otel"
	"github.com/OCAP2/bsor/internal/storage"
	"github.com/spf13/cobra"
)

const toolName = "bsor_archive"

var (
	CurrentVersion string = "0.0.1"
	BuildDate      string = "unknown"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var configDir, dumpPath string

	cmd := &cobra.Command{
		Use:   "bsor_archive [--config dir] [--dump file] <file>...",
		Short: "Archive BSOR replay files",
		Long: `Decode BSOR replay files, store them in the configured backend
(memory/JSON export, sqlite or postgres) and record per-replay
statistics in InfluxDB when enabled.

Example:
  bsor_archive --config ./conf replays/*.bsor
  bsor_archive --config ./conf --dump snapshot.db replays/*.bsor`,
		Version:       fmt.Sprintf("%s (built %s)", CurrentVersion, BuildDate),
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runArchive(cmd.Context(), configDir, dumpPath, args, stdout, stderr)
			if err != nil {
				fmt.Fprintf(stderr, "Error: %v\n", err)
			}
			return err
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.PersistentFlags().StringVarP(&configDir, "config", "c", "", "Directory containing "+config.ConfigFileName)
	cmd.Flags().StringVar(&dumpPath, "dump", "", "Snapshot the SQLite archive to this file when done")
	cmd.AddCommand(newShowCmd(&configDir, stdout, stderr))
	return cmd
}

func loadConfig(configDir string) error {
	if configDir == "" {
		config.LoadDefaults()
		return nil
	}
	return config.Load(configDir)
}

// session holds everything set up before the first file is read.
type session struct {
	logs     *logging.SlogManager
	log      *slog.Logger
	provider *intOtel.Provider
	backend  storage.Backend
	influx   *influx.Manager
	closers  []io.Closer
}

func runArchive(ctx context.Context, configDir, dumpPath string, paths []string, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := loadConfig(configDir); err != nil {
		return err
	}

	s, err := openSession(ctx, stderr)
	if err != nil {
		return err
	}
	defer s.close(ctx)

	a := &archiver{
		backend: s.backend,
		influx:  s.influx,
		log:     s.log,
	}
	a.counters, err = intOtel.NewCounters(s.provider.Meter("bsor"))
	if err != nil {
		return err
	}

	results := a.run(ctx, paths)
	failed := printResults(stdout, results)

	if c, ok := s.backend.(storage.Counter); ok {
		if n, err := c.Count(); err != nil {
			s.log.Warn("Failed to count stored replays", "error", err)
		} else {
			s.log.Info("Archive run complete", "stored", n, "failed", failed)
		}
	}

	if dumpPath != "" {
		if err := dump(s.backend, dumpPath); err != nil {
			return err
		}
		s.log.Info("Dumped archive", "path", dumpPath)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(paths))
	}
	return nil
}

func dump(backend storage.Backend, path string) error {
	d, ok := backend.(storage.Dumper)
	if !ok {
		return fmt.Errorf("storage backend cannot be dumped")
	}
	if err := d.Dump(path); err != nil {
		return fmt.Errorf("failed to dump archive: %w", err)
	}
	return nil
}

func openSession(ctx context.Context, stderr io.Writer) (*session, error) {
	s := &session{logs: logging.NewSlogManager()}
	level := config.GetString("logLevel")
	start := time.Now()

	logFile, err := logging.OpenLogFile(config.GetString("logsDir"), toolName, start)
	if err != nil {
		return nil, err
	}
	s.closers = append(s.closers, logFile)

	opts := logging.Options{File: io.MultiWriter(stderr, logFile)}

	if gc := config.GetGraylogConfig(); gc.Enabled {
		w, err := logging.NewGELFWriter(gc.Address)
		if err != nil {
			fmt.Fprintf(stderr, "Graylog disabled: %v\n", err)
		} else {
			opts.GELF = w
			s.closers = append(s.closers, w)
		}
	}

	oc := config.GetOTelConfig()
	s.provider, err = intOtel.New(ctx, intOtel.Config{
		Enabled:      oc.Enabled,
		ServiceName:  oc.ServiceName,
		BatchTimeout: oc.BatchTimeout,
		LogWriter:    logFile,
		Endpoint:     oc.Endpoint,
		Insecure:     oc.Insecure,
	})
	if err != nil {
		s.close(ctx)
		return nil, err
	}
	opts.Provider = s.provider.LoggerProvider()

	sc := config.GetStorageConfig()
	opts.Context = func() []slog.Attr {
		return []slog.Attr{slog.String("storage", sc.Type)}
	}
	s.logs.Setup(level, opts)
	s.log = s.logs.Logger()
	s.log.Info("Starting archive session", "version", CurrentVersion, "logFile", logFile.Name())

	zlog := logging.NewZerolog(logFile, level)

	s.backend, err = storage.NewBackend(sc, config.GetDBConfig(), zlog)
	if err != nil {
		s.close(ctx)
		return nil, fmt.Errorf("failed to create storage backend: %w", err)
	}
	if err := s.backend.Init(); err != nil {
		s.close(ctx)
		return nil, fmt.Errorf("failed to initialize storage backend: %w", err)
	}
	s.closers = append(s.closers, s.backend)

	im := influx.NewManager(zlog, config.GetInfluxConfig())
	switch err := im.Connect(ctx); {
	case errors.Is(err, influx.ErrDisabled):
	case err != nil:
		s.log.Warn("InfluxDB unavailable, metrics disabled", "error", err)
	default:
		s.influx = im
	}
	return s, nil
}

// close releases resources in reverse order of acquisition.
func (s *session) close(ctx context.Context) {
	if s.influx != nil {
		if err := s.influx.Close(); err != nil && s.log != nil {
			s.log.Warn("Failed to close InfluxDB", "error", err)
		}
	}
	if s.log != nil {
		s.log.Info("Archive session finished")
	}
	if s.provider != nil {
		_ = s.provider.Shutdown(ctx)
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		_ = s.closers[i].Close()
	}
	s.closers = nil
}
