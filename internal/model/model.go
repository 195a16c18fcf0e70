package model

import (
	"github.com/OCAP2/bsor/internal/geo"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DatabaseModels lists every table in the replay archive schema, parents first.
var DatabaseModels = []interface{}{
	&Replay{},
	&FrameRecord{},
	&NoteRecord{},
	&WallRecord{},
	&HeightRecord{},
	&PauseRecord{},
}

////////////////////////
// REPLAY
////////////////////////

// Replay is one archived replay file: its Info block plus derived columns.
type Replay struct {
	gorm.Model
	Source string `json:"source" gorm:"size:512"`
	SHA256 string `json:"sha256" gorm:"column:sha256;size:64;index:idx_replay_sha256"`

	ModVersion  string `json:"modVersion" gorm:"size:64"`
	GameVersion string `json:"gameVersion" gorm:"size:64"`
	Timestamp   int64  `json:"timestamp" gorm:"index:idx_replay_timestamp"` // unix seconds

	PlayerID   string `json:"playerId" gorm:"size:64;index:idx_replay_player_id"`
	PlayerName string `json:"playerName" gorm:"size:255"`
	Platform   string `json:"platform" gorm:"size:64"`

	TrackingSystem string `json:"trackingSystem" gorm:"size:64"`
	HMD            string `json:"hmd" gorm:"size:128"`
	Controller     string `json:"controller" gorm:"size:128"`

	Hash       string `json:"hash" gorm:"size:128;index:idx_replay_hash"` // map hash
	SongName   string `json:"songName" gorm:"size:255"`
	Mapper     string `json:"mapper" gorm:"size:255"`
	Difficulty string `json:"difficulty" gorm:"size:64"`

	Score        int32          `json:"score"`
	Mode         string         `json:"mode" gorm:"size:64"`
	Environment  string         `json:"environment" gorm:"size:128"`
	Modifiers    datatypes.JSON `json:"modifiers"`
	JumpDistance float32        `json:"jumpDistance"`
	LeftHanded   bool           `json:"leftHanded" gorm:"default:false"`
	Height       float32        `json:"height"`

	StartTime float32 `json:"startTime"`
	FailTime  float32 `json:"failTime"`
	SongSpeed float32 `json:"songSpeed"`

	// XYZ, room-scale metres
	HeadPath      geo.Track `json:"-"`
	LeftHandPath  geo.Track `json:"-"`
	RightHandPath geo.Track `json:"-"`

	Frames  []FrameRecord  `json:"frames,omitempty"`
	Notes   []NoteRecord   `json:"notes,omitempty"`
	Walls   []WallRecord   `json:"walls,omitempty"`
	Heights []HeightRecord `json:"heights,omitempty"`
	Pauses  []PauseRecord  `json:"pauses,omitempty"`
}

func (*Replay) TableName() string {
	return "replays"
}

////////////////////////
// EVENTS
////////////////////////

// Rotation is an embedded quaternion.
type Rotation struct {
	W float32 `json:"w"`
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

// FrameRecord is one tracking sample. Seq is the position on the timeline.
type FrameRecord struct {
	ID       uint    `json:"id" gorm:"primarykey;autoIncrement;"`
	ReplayID uint    `json:"replayId" gorm:"index:idx_frame_replay_id"`
	Replay   *Replay `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Seq      int     `json:"seq"`
	Time     float32 `json:"time" gorm:"index:idx_frame_time"`
	FPS      int32   `json:"fps"`

	HeadPosition      geo.Position `json:"-"`
	HeadRotation      Rotation     `json:"headRot" gorm:"embedded;embeddedPrefix:headrot_"`
	LeftHandPosition  geo.Position `json:"-"`
	LeftHandRotation  Rotation     `json:"leftHandRot" gorm:"embedded;embeddedPrefix:leftrot_"`
	RightHandPosition geo.Position `json:"-"`
	RightHandRotation Rotation     `json:"rightHandRot" gorm:"embedded;embeddedPrefix:rightrot_"`
}

func (*FrameRecord) TableName() string {
	return "frame_records"
}

// NoteRecord is one note outcome. Type is the raw event type code so that
// codes newer than this build survive a round trip. CutData is NULL for
// misses and bombs.
type NoteRecord struct {
	ID        uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	ReplayID  uint           `json:"replayId" gorm:"index:idx_note_replay_id"`
	Replay    *Replay        `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Seq       int            `json:"seq"`
	NoteID    int32          `json:"noteId"`
	Time      float32        `json:"time" gorm:"index:idx_note_time"`
	SpawnTime float32        `json:"spawnTime"`
	Type      int32          `json:"type"`
	CutData   datatypes.JSON `json:"cutData,omitempty" gorm:"default:NULL"`
}

func (*NoteRecord) TableName() string {
	return "note_records"
}

// WallRecord is one wall collision.
type WallRecord struct {
	ID        uint    `json:"id" gorm:"primarykey;autoIncrement;"`
	ReplayID  uint    `json:"replayId" gorm:"index:idx_wall_replay_id"`
	Replay    *Replay `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Seq       int     `json:"seq"`
	WallID    int32   `json:"wallId"`
	Energy    float32 `json:"energy"`
	Time      float32 `json:"time"`
	SpawnTime float32 `json:"spawnTime"`
}

func (*WallRecord) TableName() string {
	return "wall_records"
}

// HeightRecord is a player height change.
type HeightRecord struct {
	ID       uint    `json:"id" gorm:"primarykey;autoIncrement;"`
	ReplayID uint    `json:"replayId" gorm:"index:idx_height_replay_id"`
	Replay   *Replay `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Seq      int     `json:"seq"`
	Height   float32 `json:"height"`
	Time     float32 `json:"time"`
}

func (*HeightRecord) TableName() string {
	return "height_records"
}

// PauseRecord is one pause, duration as recorded.
type PauseRecord struct {
	ID       uint    `json:"id" gorm:"primarykey;autoIncrement;"`
	ReplayID uint    `json:"replayId" gorm:"index:idx_pause_replay_id"`
	Replay   *Replay `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Seq      int     `json:"seq"`
	Duration int64   `json:"duration"`
	Time     float32 `json:"time"`
}

func (*PauseRecord) TableName() string {
	return "pause_records"
}
