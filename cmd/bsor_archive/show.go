package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/OCAP2/bsor/internal/model"
	"github.com/OCAP2/bsor/internal/stats"
	"github.com/OCAP2/bsor/internal/storage"
	"github.com/OCAP2/bsor/pkg/bsor"
	"github.com/spf13/cobra"
)

func newShowCmd(configDir *string, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print an archived replay",
		Long: `Load a replay from the configured database backend and print its
Info block, event counts and derived statistics.

Example:
  bsor_archive --config ./conf show 12`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runShow(cmd.Context(), *configDir, args[0], stdout, stderr)
			if err != nil {
				fmt.Fprintf(stderr, "Error: %v\n", err)
			}
			return err
		},
	}
}

func runShow(ctx context.Context, configDir, idArg string, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	id, err := strconv.ParseUint(idArg, 10, 0)
	if err != nil || id == 0 {
		return fmt.Errorf("invalid replay id %q", idArg)
	}
	if err := loadConfig(configDir); err != nil {
		return err
	}

	s, err := openSession(ctx, stderr)
	if err != nil {
		return err
	}
	defer s.close(ctx)

	l, ok := s.backend.(storage.Loader)
	if !ok {
		return fmt.Errorf("storage backend cannot load replays")
	}
	r, meta, err := l.LoadReplay(uint(id))
	if err != nil {
		return err
	}
	printReplay(stdout, uint(id), r, meta)
	return nil
}

// printReplay writes a stored replay in the tab-indented layout of the
// bsor dump tool.
func printReplay(w io.Writer, id uint, r *bsor.Replay, meta model.ReplayMeta) {
	info := r.Info
	s := stats.Summarize(r)

	mods := "none"
	if len(info.Modifiers) > 0 {
		mods = strings.Join(info.Modifiers, ",")
	}

	fmt.Fprintf(w, "Replay #%d:\n", id)
	fmt.Fprintf(w, "\tsource = %s\n", meta.Source)
	fmt.Fprintf(w, "\tsha256 = %s\n", meta.SHA256)
	fmt.Fprintf(w, "\tplayer = %s (%s)\n", info.PlayerName, info.PlayerID)
	fmt.Fprintf(w, "\tsong = %s [%s] by %s\n", info.SongName, info.Difficulty, info.Mapper)
	fmt.Fprintf(w, "\tplayed = %s\n", info.Time().Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "\tscore = %d\n", info.Score)
	fmt.Fprintf(w, "\tmodifiers = %s\n", mods)

	fmt.Fprintln(w, "Events:")
	counts := s.EventsByKind()
	for _, k := range bsor.AllKinds {
		fmt.Fprintf(w, "\t%s = %d\n", strings.ToLower(k.String()), counts[k.String()])
	}

	fmt.Fprintln(w, "Stats:")
	fmt.Fprintf(w, "\taccuracy = %.2f%%\n", s.Accuracy*100)
	fmt.Fprintf(w, "\tmean_cut_rating = %.3f\n", s.MeanCutRating)
	fmt.Fprintf(w, "\thead_travel = %.2f m\n", s.HeadTravel)
	fmt.Fprintf(w, "\tleft_hand_travel = %.2f m\n", s.LeftHandTravel)
	fmt.Fprintf(w, "\tright_hand_travel = %.2f m\n", s.RightHandTravel)
	fmt.Fprintf(w, "\thead_span = %s\n", s.HeadSpan)
	fmt.Fprintf(w, "\tduration = %gs\n", s.Duration)
}
