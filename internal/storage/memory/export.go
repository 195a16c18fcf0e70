package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/OCAP2/bsor/internal/stats"
	"github.com/OCAP2/bsor/pkg/bsor"
)

// ExportFormatVersion is written into every export.
const ExportFormatVersion = 1

// ReplayExport is the JSON document written per replay. Events are compact
// arrays per kind, in timeline order:
//
//	frames:  [time, fps, headPos, headRot, leftPos, leftRot, rightPos, rightRot]
//	notes:   [time, id, spawnTime, type, cut|null]
//	walls:   [time, id, spawnTime, energy]
//	heights: [time, height]
//	pauses:  [time, duration]
//
// Positions are [x, y, z] and rotations [w, x, y, z].
type ReplayExport struct {
	FormatVersion int           `json:"formatVersion"`
	Source        string        `json:"source"`
	SHA256        string        `json:"sha256"`
	Info          InfoJSON      `json:"info"`
	Summary       stats.Summary `json:"summary"`
	Frames        [][]any       `json:"frames"`
	Notes         [][]any       `json:"notes"`
	Walls         [][]any       `json:"walls"`
	Heights       [][]any       `json:"heights"`
	Pauses        [][]any       `json:"pauses"`
}

// InfoJSON is the export shape of the Info block.
type InfoJSON struct {
	ModVersion     string   `json:"modVersion"`
	GameVersion    string   `json:"gameVersion"`
	Timestamp      int64    `json:"timestamp"`
	PlayerID       string   `json:"playerId"`
	PlayerName     string   `json:"playerName"`
	Platform       string   `json:"platform"`
	TrackingSystem string   `json:"trackingSystem"`
	HMD            string   `json:"hmd"`
	Controller     string   `json:"controller"`
	Hash           string   `json:"hash"`
	SongName       string   `json:"songName"`
	Mapper         string   `json:"mapper"`
	Difficulty     string   `json:"difficulty"`
	Score          int32    `json:"score"`
	Mode           string   `json:"mode"`
	Environment    string   `json:"environment"`
	Modifiers      []string `json:"modifiers"`
	JumpDistance   float32  `json:"jumpDistance"`
	LeftHanded     bool     `json:"leftHanded"`
	Height         float32  `json:"height"`
	StartTime      float32  `json:"startTime"`
	FailTime       float32  `json:"failTime"`
	SongSpeed      float32  `json:"songSpeed"`
}

// CutJSON is the export shape of a note's cut data.
type CutJSON struct {
	SpeedOK         bool       `json:"speedOk"`
	DirectionOK     bool       `json:"directionOk"`
	SaberTypeOK     bool       `json:"saberTypeOk"`
	CutTooSoon      bool       `json:"cutTooSoon"`
	SaberSpeed      float32    `json:"saberSpeed"`
	SaberDir        [3]float32 `json:"saberDir"`
	SaberType       int32      `json:"saberType"`
	TimeDeviation   float32    `json:"timeDeviation"`
	CutDirDeviation float32    `json:"cutDirDeviation"`
	CutPoint        [3]float32 `json:"cutPoint"`
	CutNormal       [3]float32 `json:"cutNormal"`
	CutDistToCenter float32    `json:"cutDistToCenter"`
	CutAngle        float32    `json:"cutAngle"`
	BeforeCutRating float32    `json:"beforeCutRating"`
	AfterCutRating  float32    `json:"afterCutRating"`
}

func vec(v bsor.Vector3) [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

func quat(q bsor.Quaternion) [4]float32 {
	return [4]float32{q.Real, q.I, q.J, q.K}
}

func infoJSON(i bsor.Info) InfoJSON {
	mods := i.Modifiers
	if mods == nil {
		mods = []string{}
	}
	return InfoJSON{
		ModVersion:     i.ModVersion,
		GameVersion:    i.GameVersion,
		Timestamp:      i.Timestamp,
		PlayerID:       i.PlayerID,
		PlayerName:     i.PlayerName,
		Platform:       i.Platform,
		TrackingSystem: i.TrackingSystem,
		HMD:            i.HMD,
		Controller:     i.Controller,
		Hash:           i.Hash,
		SongName:       i.SongName,
		Mapper:         i.Mapper,
		Difficulty:     i.Difficulty,
		Score:          i.Score,
		Mode:           i.Mode,
		Environment:    i.Environment,
		Modifiers:      mods,
		JumpDistance:   i.JumpDistance,
		LeftHanded:     i.LeftHanded,
		Height:         i.Height,
		StartTime:      i.StartTime,
		FailTime:       i.FailTime,
		SongSpeed:      i.SongSpeed,
	}
}

func cutJSON(c *bsor.CutData) *CutJSON {
	if c == nil {
		return nil
	}
	return &CutJSON{
		SpeedOK:         c.SpeedOK,
		DirectionOK:     c.DirectionOK,
		SaberTypeOK:     c.SaberTypeOK,
		CutTooSoon:      c.CutTooSoon,
		SaberSpeed:      c.SaberSpeed,
		SaberDir:        vec(c.SaberDir),
		SaberType:       c.SaberType,
		TimeDeviation:   c.TimeDeviation,
		CutDirDeviation: c.CutDirDeviation,
		CutPoint:        vec(c.CutPoint),
		CutNormal:       vec(c.CutNormal),
		CutDistToCenter: c.CutDistToCenter,
		CutAngle:        c.CutAngle,
		BeforeCutRating: c.BeforeCutRating,
		AfterCutRating:  c.AfterCutRating,
	}
}

// buildExport converts a stored replay into its export document.
func buildExport(rec *ReplayRecord) ReplayExport {
	r := rec.Replay
	export := ReplayExport{
		FormatVersion: ExportFormatVersion,
		Source:        rec.Meta.Source,
		SHA256:        rec.Meta.SHA256,
		Info:          infoJSON(r.Info),
		Summary:       stats.Summarize(r),
		Frames:        make([][]any, 0),
		Notes:         make([][]any, 0),
		Walls:         make([][]any, 0),
		Heights:       make([][]any, 0),
		Pauses:        make([][]any, 0),
	}

	for _, e := range r.Events {
		switch ev := e.(type) {
		case *bsor.FrameEvent:
			export.Frames = append(export.Frames, []any{
				ev.Time, ev.FPS,
				vec(ev.HeadPos), quat(ev.HeadRot),
				vec(ev.LeftHandPos), quat(ev.LeftHandRot),
				vec(ev.RightHandPos), quat(ev.RightHandRot),
			})
		case *bsor.NoteEvent:
			export.Notes = append(export.Notes, []any{
				ev.Time, ev.ID, ev.SpawnTime, ev.Type.String(), cutJSON(ev.CutData),
			})
		case *bsor.WallEvent:
			export.Walls = append(export.Walls, []any{ev.Time, ev.ID, ev.SpawnTime, ev.Energy})
		case *bsor.HeightEvent:
			export.Heights = append(export.Heights, []any{ev.Time, ev.Height})
		case *bsor.PauseEvent:
			export.Pauses = append(export.Pauses, []any{ev.Time, ev.Duration})
		}
	}

	return export
}

// exportFileName builds "<player>_<song>_<difficulty>_<timestamp>_<hash>".
func exportFileName(rec *ReplayRecord) string {
	info := rec.Replay.Info
	hash := rec.Meta.SHA256
	if len(hash) > 8 {
		hash = hash[:8]
	}
	if hash == "" {
		hash = shortHash(rec.Replay)
	}

	parts := []string{info.PlayerName, info.SongName, info.Difficulty, info.Time().Format("20060102_150405"), hash}
	name := strings.Join(parts, "_")
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', ':', '/', '\\', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
}

// exportJSON writes rec to the output directory and returns the file path.
func (b *Backend) exportJSON(rec *ReplayRecord) (string, error) {
	export := buildExport(rec)

	filename := exportFileName(rec) + ".json"
	if b.cfg.CompressOutput {
		filename += ".gz"
	}
	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	var err error
	if b.cfg.CompressOutput {
		err = writeGzipJSON(outputPath, export)
	} else {
		err = writeJSON(outputPath, export)
	}
	if err != nil {
		return "", err
	}
	return outputPath, nil
}

func writeJSON(path string, data ReplayExport) error {
	return writeFile(path, func(w io.Writer) error {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		return nil
	})
}

func writeGzipJSON(path string, data ReplayExport) error {
	return writeFile(path, func(w io.Writer) error {
		gz := gzip.NewWriter(w)
		if err := json.NewEncoder(gz).Encode(data); err != nil {
			gz.Close()
			return fmt.Errorf("failed to write export: %w", err)
		}
		if err := gz.Close(); err != nil {
			return fmt.Errorf("failed to finish gzip stream: %w", err)
		}
		return nil
	})
}

// writeFile writes to a temp file next to path and renames it into place.
// On error nothing is left behind.
func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()

	if err = write(f); err != nil {
		return err
	}
	if err = f.Chmod(0644); err != nil {
		return fmt.Errorf("failed to set export permissions: %w", err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("failed to close export: %w", err)
	}
	if err = os.Rename(f.Name(), path); err != nil {
		return fmt.Errorf("failed to move export into place: %w", err)
	}
	return nil
}
