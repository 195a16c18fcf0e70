package influx

import (
	"github.com/OCAP2/bsor/internal/stats"
	"github.com/OCAP2/bsor/pkg/bsor"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
)

// ReplayMeasurement is the measurement name of replay points.
const ReplayMeasurement = "replay"

// ReplayPoint builds one point per replay, stamped with the play time.
// Identity goes into tags and outcomes into fields.
func ReplayPoint(info bsor.Info, s stats.Summary) *influxdb2_write.Point {
	p := influxdb2_write.NewPointWithMeasurement(ReplayMeasurement).
		SetTime(info.Time())

	tags := [][2]string{
		{"difficulty", info.Difficulty},
		{"hmd", info.HMD},
		{"mode", info.Mode},
		{"platform", info.Platform},
		{"player_id", info.PlayerID},
		{"song_hash", info.Hash},
	}
	for _, t := range tags {
		// line protocol rejects empty tag values
		if t[1] != "" {
			p.AddTag(t[0], t[1])
		}
	}

	p.AddField("score", info.Score).
		AddField("failed", info.FailTime > 0).
		AddField("song_speed", info.SongSpeed).
		AddField("notes", s.Notes).
		AddField("good_hits", s.GoodHits).
		AddField("bad_hits", s.BadHits).
		AddField("misses", s.Misses).
		AddField("bombs", s.Bombs).
		AddField("walls", s.Walls).
		AddField("pauses", s.Pauses).
		AddField("accuracy", s.Accuracy).
		AddField("mean_cut_rating", s.MeanCutRating).
		AddField("avg_fps", s.AverageFPS).
		AddField("head_travel", s.HeadTravel).
		AddField("left_hand_travel", s.LeftHandTravel).
		AddField("right_hand_travel", s.RightHandTravel).
		AddField("duration", s.Duration)

	return p
}
