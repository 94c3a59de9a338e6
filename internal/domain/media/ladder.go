package media

// Rung is one producible output: a tier with its target height and bitrate cap.
type Rung struct {
	Quality    Quality
	Height     int
	MaxBitrate string
}

// ladder is the fixed set of producible renditions, best-first.
var ladder = []Rung{
	{Quality: QualityP4K, Height: 2160, MaxBitrate: "15000k"},
	{Quality: QualityP1080, Height: 1080, MaxBitrate: "5000k"},
	{Quality: QualityP720, Height: 720, MaxBitrate: "2500k"},
	{Quality: QualityP480, Height: 480, MaxBitrate: "1000k"},
	{Quality: QualityP360, Height: 360, MaxBitrate: "700k"},
	{Quality: QualityP240, Height: 240, MaxBitrate: "400k"},
}

// Ladder returns the full encoding ladder, best-first.
func Ladder() []Rung {
	out := make([]Rung, len(ladder))
	copy(out, ladder)
	return out
}

// PlanLadder returns the rungs worth producing for a source of the given
// height: every rung whose target height fits within the source, best-first.
// We never upscale, but a source below the lowest rung still gets exactly
// that rung so every upload ends up playable.
func PlanLadder(sourceHeight int) []Rung {
	var plan []Rung
	for _, rung := range ladder {
		if rung.Height <= sourceHeight {
			plan = append(plan, rung)
		}
	}
	if len(plan) == 0 {
		plan = append(plan, ladder[len(ladder)-1])
	}
	return plan
}
