package layout

import opensimplex "github.com/ojrac/opensimplex-go"

// jiggler produces tiny, deterministic offsets that separate coincident nodes.
type jiggler struct {
	noise opensimplex.Noise
	step  float64
}

func newJiggler(seed int64) *jiggler {
	return &jiggler{noise: opensimplex.New(seed)}
}

// next returns a non-zero value in (-1e-6, 1e-6).
func (j *jiggler) next() float64 {
	j.step += 0.618
	v := j.noise.Eval2(j.step, 0.5) * 1e-6
	if v == 0 {
		v = 1e-7
	}
	return v
}
