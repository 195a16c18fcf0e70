package main

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/OCAP2/bsor/internal/influx"
	"github.com/OCAP2/bsor/internal/logging"
	"github.com/OCAP2/bsor/internal/model"
	intOtel "github.com/OCAP2/bsor/internal/otel"
	"github.com/OCAP2/bsor/internal/stats"
	"github.com/OCAP2/bsor/internal/storage"
	"github.com/OCAP2/bsor/pkg/bsor"
)

// Result is the outcome of archiving one file.
type Result struct {
	Path      string
	ID        uint
	Duplicate bool
	Summary   stats.Summary
	Err       error
}

// archiver decodes replay files and hands them to storage and InfluxDB.
type archiver struct {
	backend  storage.Backend
	influx   *influx.Manager // nil when disabled
	counters *intOtel.Counters
	log      *slog.Logger
}

// run archives every path in order and returns one Result per path.
func (a *archiver) run(ctx context.Context, paths []string) []Result {
	results := make([]Result, 0, len(paths))
	for _, path := range paths {
		fileCtx := logging.WithAttrs(ctx, slog.String("file", path))
		res := a.ingest(fileCtx, path)
		if res.Err != nil {
			a.log.ErrorContext(fileCtx, "Failed to archive replay", "error", res.Err)
		}
		results = append(results, res)
	}
	return results
}

func (a *archiver) ingest(ctx context.Context, path string) Result {
	res := Result{Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		a.counters.ReplayFailed(ctx, "io")
		res.Err = fmt.Errorf("error reading replay file: %w", err)
		return res
	}
	sum := sha256.Sum256(data)
	meta := model.ReplayMeta{Source: path, SHA256: hex.EncodeToString(sum[:])}

	if d, ok := a.backend.(storage.Deduper); ok {
		id, found, err := d.FindBySHA256(meta.SHA256)
		if err != nil {
			res.Err = fmt.Errorf("error checking for duplicate: %w", err)
			return res
		}
		if found {
			a.log.InfoContext(ctx, "Replay already archived", "id", id)
			res.ID, res.Duplicate = id, true
			return res
		}
	}

	start := time.Now()
	replay, err := bsor.Decode(bytes.NewReader(data))
	if err != nil {
		a.counters.ReplayFailed(ctx, failureReason(err))
		res.Err = fmt.Errorf("failed to decode replay: %w", err)
		return res
	}
	res.Summary = stats.Summarize(replay)
	a.counters.ReplayDecoded(ctx, res.Summary.EventsByKind())
	a.log.DebugContext(ctx, "Decoded replay",
		"player", replay.Info.PlayerName,
		"song", replay.Info.SongName,
		"events", len(replay.Events),
		"duration", time.Since(start))

	res.ID, err = a.backend.StoreReplay(replay, meta)
	if err != nil {
		a.counters.ReplayFailed(ctx, "store")
		res.Err = fmt.Errorf("failed to store replay: %w", err)
		return res
	}
	if ex, ok := a.backend.(storage.Exporter); ok && ex.LastExportPath() != "" {
		a.log.InfoContext(ctx, "Exported replay", "path", ex.LastExportPath())
	}

	if a.influx != nil {
		point := influx.ReplayPoint(replay.Info, res.Summary)
		if err := a.influx.WritePoint(a.influx.Bucket(), point); err != nil {
			// the replay is stored; a lost metric is not a failed file
			a.log.WarnContext(ctx, "Failed to write replay metrics", "error", err)
		}
	}

	a.log.InfoContext(ctx, "Archived replay", "id", res.ID, "accuracy", res.Summary.Accuracy)
	return res
}

// failureReason maps a decode error to the counter's reason attribute.
func failureReason(err error) string {
	switch {
	case errors.Is(err, bsor.ErrMagicMismatch):
		return "magic"
	case errors.Is(err, bsor.ErrUnsupportedVersion):
		return "version"
	case errors.Is(err, bsor.ErrTruncated):
		return "truncated"
	case errors.Is(err, bsor.ErrMalformedSection):
		return "malformed"
	case errors.Is(err, bsor.ErrNumericParse):
		return "numeric"
	case errors.Is(err, bsor.ErrNegativeLength):
		return "negative_length"
	default:
		return "other"
	}
}

// printResults writes one line per file and returns the number of failures.
func printResults(w io.Writer, results []Result) int {
	failed := 0
	for _, r := range results {
		switch {
		case r.Err != nil:
			failed++
			fmt.Fprintf(w, "%s: FAILED: %s\n", r.Path, r.Err)
		case r.Duplicate:
			fmt.Fprintf(w, "%s: already archived as #%d\n", r.Path, r.ID)
		default:
			fmt.Fprintf(w, "%s: archived as #%d (%d events, accuracy %.2f%%)\n",
				r.Path, r.ID, r.Summary.Total(), r.Summary.Accuracy*100)
		}
	}
	return failed
}
