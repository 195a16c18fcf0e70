package main

import (
	"fmt"
	"io"

	"github.com/OCAP2/bsor/pkg/bsor"
)

// flag renders a bool the way the dump has always shown them.
func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}

func printInfo(w io.Writer, info bsor.Info) {
	fmt.Fprintln(w, "Info:")
	fields := []struct {
		name  string
		value any
	}{
		{"mod_version", info.ModVersion},
		{"game_version", info.GameVersion},
		{"timestamp", info.Timestamp},
		{"player_id", info.PlayerID},
		{"player_name", info.PlayerName},
		{"platform", info.Platform},
		{"tracking_system", info.TrackingSystem},
		{"hmd", info.HMD},
		{"controller", info.Controller},
		{"hash", info.Hash},
		{"song_name", info.SongName},
		{"mapper", info.Mapper},
		{"difficulty", info.Difficulty},
		{"score", info.Score},
		{"mode", info.Mode},
		{"environment", info.Environment},
	}
	for _, f := range fields {
		fmt.Fprintf(w, "\t%s = %v\n", f.name, f.value)
	}

	fmt.Fprintln(w, "\tmodifiers:")
	for _, mod := range info.Modifiers {
		fmt.Fprintf(w, "\t\t%s\n", mod)
	}

	fmt.Fprintf(w, "\tjump_distance = %g\n", info.JumpDistance)
	fmt.Fprintf(w, "\tleft_handed = %d\n", flag(info.LeftHanded))
	fmt.Fprintf(w, "\theight = %g\n", info.Height)
	fmt.Fprintf(w, "\tstart_time = %g\n", info.StartTime)
	fmt.Fprintf(w, "\tfail_time = %g\n", info.FailTime)
	fmt.Fprintf(w, "\tsong_speed = %g\n", info.SongSpeed)
}

// printEvents writes at most limit events followed by a count of the rest.
// A limit of zero or less prints everything. Nothing is written for an
// empty slice.
func printEvents(w io.Writer, events []bsor.Event, limit int) {
	if len(events) == 0 {
		return
	}
	fmt.Fprintln(w, "Events:")

	shown := events
	if limit > 0 && len(events) > limit {
		shown = events[:limit]
	}
	for _, e := range shown {
		printEvent(w, e)
	}
	if rest := len(events) - len(shown); rest > 0 {
		fmt.Fprintf(w, "[%d more entries]\n", rest)
	}
}

func printEvent(w io.Writer, e bsor.Event) {
	switch ev := e.(type) {
	case *bsor.FrameEvent:
		fmt.Fprintf(w, "FRAME\n\ttime=%g\n\tfps=%d\n\thead_pos=%s\n\thead_rot=%s\n\tleft_hand_pos=%s\n\tleft_hand_rot=%s\n\tright_hand_pos=%s\n\tright_hand_rot=%s\n",
			ev.Time, ev.FPS, ev.HeadPos, ev.HeadRot, ev.LeftHandPos, ev.LeftHandRot, ev.RightHandPos, ev.RightHandRot)
	case *bsor.NoteEvent:
		fmt.Fprintf(w, "NOTE\n\ttime=%g\n\tid=%d\n\tspawn_time=%g\n\ttype=%d\n",
			ev.Time, ev.ID, ev.SpawnTime, int32(ev.Type))
		if cd := ev.CutData; cd != nil {
			fmt.Fprintf(w, "\tspeed_ok=%d\n\tdirection_ok=%d\n\tsaber_type_ok=%d\n\tcut_too_soon=%d\n",
				flag(cd.SpeedOK), flag(cd.DirectionOK), flag(cd.SaberTypeOK), flag(cd.CutTooSoon))
			fmt.Fprintf(w, "\tsaber_speed=%g\n\tsaber_dir=%s\n\tsaber_type=%d\n\ttime_deviation=%g\n\tcut_dir_deviation=%g\n",
				cd.SaberSpeed, cd.SaberDir, cd.SaberType, cd.TimeDeviation, cd.CutDirDeviation)
			fmt.Fprintf(w, "\tcut_point=%s\n\tcut_normal=%s\n\tcut_dist_to_center=%g\n\tcut_angle=%g\n\tbefore_cut_rating=%g\n\tafter_cut_rating=%g\n",
				cd.CutPoint, cd.CutNormal, cd.CutDistToCenter, cd.CutAngle, cd.BeforeCutRating, cd.AfterCutRating)
		}
	case *bsor.WallEvent:
		fmt.Fprintf(w, "WALL\n\ttime=%g\n\tid=%d\n\tenergy=%g\n\tspawn_time=%g\n",
			ev.Time, ev.ID, ev.Energy, ev.SpawnTime)
	case *bsor.HeightEvent:
		fmt.Fprintf(w, "HEIGHT\n\ttime=%g\n\theight=%g\n", ev.Time, ev.Height)
	case *bsor.PauseEvent:
		fmt.Fprintf(w, "PAUSE\n\ttime=%g\n\tduration=%d\n", ev.Time, ev.Duration)
	}
}
