package fuzzy

// Rule is a conjunction of variable=label clauses plus a scalar weight.
// Firing strength is the min of clause memberships (Mamdani AND).
type Rule struct {
	If map[string]string
	W  float64
}

// Params holds the scalar thresholds that govern trigger/release decisions,
// independent of the membership functions and rule banks.
type Params struct {
	TriggerThreshold   float64
	NearForceDistanceM float64
	ReleaseDistanceM   float64
}

// DefaultParams matches the values original_source/src/ai/anfis.py falls
// back to when no model document supplies them.
func DefaultParams() Params {
	return Params{
		TriggerThreshold:   0.5,
		NearForceDistanceM: 200.0,
		ReleaseDistanceM:   50.0,
	}
}

// Model is the Sugeno-style fuzzy inference engine: fuzzy sets per input
// variable, two rule banks (trigger, extend), and the green-duration
// bounds. The zero value is not usable; construct via DefaultModel or Load.
type Model struct {
	FuzzySets    map[string]map[string]TriMF
	RulesTrigger []Rule
	RulesExtend  []Rule
	MinGreen     float64
	MaxGreen     float64
	Params       Params
}

// DefaultModel returns the built-in fuzzy sets, rule banks, and green
// bounds used whenever no model document is supplied.
func DefaultModel() *Model {
	return &Model{
		FuzzySets: map[string]map[string]TriMF{
			"dist_to_tls": {
				"near": {0, 30, 80},
				"mid":  {50, 120, 200},
				"far":  {150, 300, 500},
			},
			"ambulance_speed": {
				"low":  {0, 2, 5},
				"med":  {3, 7, 11},
				"high": {9, 14, 20},
			},
			"queue_length": {
				"short": {0, 0, 10},
				"med":   {5, 20, 40},
				"long":  {30, 60, 100},
			},
			"eta_seconds": {
				"soon": {0, 4, 8},
				"mid":  {6, 10, 16},
				"late": {12, 20, 35},
			},
			"phase_remaining": {
				"short": {0, 1, 3},
				"mid":   {2, 6, 10},
				"long":  {8, 14, 22},
			},
		},
		RulesTrigger: []Rule{
			{If: map[string]string{"dist_to_tls": "near", "eta_seconds": "soon"}, W: 1.0},
			{If: map[string]string{"dist_to_tls": "near", "queue_length": "long"}, W: 0.9},
			{If: map[string]string{"dist_to_tls": "mid", "ambulance_speed": "high"}, W: 0.8},
			{If: map[string]string{"queue_length": "long"}, W: 0.7},
			{If: map[string]string{"phase_remaining": "short", "eta_seconds": "soon"}, W: 0.85},
		},
		RulesExtend: []Rule{
			{If: map[string]string{"dist_to_tls": "near"}, W: 10.0},
			{If: map[string]string{"queue_length": "long"}, W: 4.0},
			{If: map[string]string{"ambulance_speed": "low"}, W: 2.0},
			{If: map[string]string{"phase_remaining": "short"}, W: 3.0},
		},
		MinGreen: 6.0,
		MaxGreen: 20.0,
		Params:   DefaultParams(),
	}
}

// mu looks up the membership of x under var=label, returning 0 if either is
// undefined rather than erroring — an unmodelled variable simply never
// fires any rule referencing it.
func (m *Model) mu(variable, label string, x float64) float64 {
	sets, ok := m.FuzzySets[variable]
	if !ok {
		return 0
	}
	fn, ok := sets[label]
	if !ok {
		return 0
	}
	return fn.Mu(x)
}

// ruleFire evaluates a rule's conjunction as the min of each clause's
// membership against feats.
func (m *Model) ruleFire(cond map[string]string, feats map[string]float64) float64 {
	fire := 1.0
	for variable, label := range cond {
		x := feats[variable]
		v := m.mu(variable, label, x)
		if v < fire {
			fire = v
		}
	}
	return fire
}

// PredictTriggerProb aggregates the trigger rule bank by
// max_rule(fire * clamp(w, 0, 1)), producing a probability in [0, 1].
func (m *Model) PredictTriggerProb(feats map[string]float64) float64 {
	best := 0.0
	for _, r := range m.RulesTrigger {
		fire := m.ruleFire(r.If, feats)
		if v := fire * clamp(r.W, 0, 1); v > best {
			best = v
		}
	}
	return clamp(best, 0, 1)
}

// PredictExtendSeconds aggregates the extend rule bank as
// min_green + sum(fire*w), clamped to [min_green, max_green].
func (m *Model) PredictExtendSeconds(feats map[string]float64) float64 {
	sec := m.MinGreen
	for _, r := range m.RulesExtend {
		fire := m.ruleFire(r.If, feats)
		sec += fire * r.W
	}
	return clamp(sec, m.MinGreen, m.MaxGreen)
}
