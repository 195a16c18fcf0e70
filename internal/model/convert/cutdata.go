package convert

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/OCAP2/bsor/pkg/bsor"
)

// jsonFloat writes NaN and the infinities as strings, which encoding/json
// refuses to emit as numbers.
type jsonFloat float32

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsNaN(v):
		return []byte(`"NaN"`), nil
	case math.IsInf(v, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Inf"`), nil
	}
	return json.Marshal(float32(f))
}

func (f *jsonFloat) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(s, 32)
		if err != nil || !(math.IsNaN(v) || math.IsInf(v, 0)) {
			return fmt.Errorf("invalid non-finite float %q", s)
		}
		*f = jsonFloat(v)
		return nil
	}
	var v float32
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = jsonFloat(v)
	return nil
}

type vectorJSON struct {
	X jsonFloat `json:"x"`
	Y jsonFloat `json:"y"`
	Z jsonFloat `json:"z"`
}

func toVectorJSON(v bsor.Vector3) vectorJSON {
	return vectorJSON{X: jsonFloat(v.X), Y: jsonFloat(v.Y), Z: jsonFloat(v.Z)}
}

func (v vectorJSON) vector() bsor.Vector3 {
	return bsor.Vector3{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}

// cutDataJSON is the stored shape of a note's cut data.
type cutDataJSON struct {
	SpeedOK         bool       `json:"speedOk"`
	DirectionOK     bool       `json:"directionOk"`
	SaberTypeOK     bool       `json:"saberTypeOk"`
	CutTooSoon      bool       `json:"cutTooSoon"`
	SaberSpeed      jsonFloat  `json:"saberSpeed"`
	SaberDir        vectorJSON `json:"saberDir"`
	SaberType       int32      `json:"saberType"`
	TimeDeviation   jsonFloat  `json:"timeDeviation"`
	CutDirDeviation jsonFloat  `json:"cutDirDeviation"`
	CutPoint        vectorJSON `json:"cutPoint"`
	CutNormal       vectorJSON `json:"cutNormal"`
	CutDistToCenter jsonFloat  `json:"cutDistToCenter"`
	CutAngle        jsonFloat  `json:"cutAngle"`
	BeforeCutRating jsonFloat  `json:"beforeCutRating"`
	AfterCutRating  jsonFloat  `json:"afterCutRating"`
}

func toCutDataJSON(c *bsor.CutData) cutDataJSON {
	return cutDataJSON{
		SpeedOK:         c.SpeedOK,
		DirectionOK:     c.DirectionOK,
		SaberTypeOK:     c.SaberTypeOK,
		CutTooSoon:      c.CutTooSoon,
		SaberSpeed:      jsonFloat(c.SaberSpeed),
		SaberDir:        toVectorJSON(c.SaberDir),
		SaberType:       c.SaberType,
		TimeDeviation:   jsonFloat(c.TimeDeviation),
		CutDirDeviation: jsonFloat(c.CutDirDeviation),
		CutPoint:        toVectorJSON(c.CutPoint),
		CutNormal:       toVectorJSON(c.CutNormal),
		CutDistToCenter: jsonFloat(c.CutDistToCenter),
		CutAngle:        jsonFloat(c.CutAngle),
		BeforeCutRating: jsonFloat(c.BeforeCutRating),
		AfterCutRating:  jsonFloat(c.AfterCutRating),
	}
}

func (c cutDataJSON) cutData() *bsor.CutData {
	return &bsor.CutData{
		SpeedOK:         c.SpeedOK,
		DirectionOK:     c.DirectionOK,
		SaberTypeOK:     c.SaberTypeOK,
		CutTooSoon:      c.CutTooSoon,
		SaberSpeed:      float32(c.SaberSpeed),
		SaberDir:        c.SaberDir.vector(),
		SaberType:       c.SaberType,
		TimeDeviation:   float32(c.TimeDeviation),
		CutDirDeviation: float32(c.CutDirDeviation),
		CutPoint:        c.CutPoint.vector(),
		CutNormal:       c.CutNormal.vector(),
		CutDistToCenter: float32(c.CutDistToCenter),
		CutAngle:        float32(c.CutAngle),
		BeforeCutRating: float32(c.BeforeCutRating),
		AfterCutRating:  float32(c.AfterCutRating),
	}
}
