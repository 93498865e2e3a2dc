package domain

// AggregateScore combines the six aspect scores into one normalized value in
// [0,10]: sum(score * weight) / sum(weight). Nil weights use the default.
// Pure; the only non-determinism in the pipeline lives in the backend.
func AggregateScore(aspects AspectSet, weights AspectWeights) (float64, error) {
	if weights == nil {
		weights = DefaultWeights()
	}
	if err := weights.Validate(); err != nil {
		return 0, err
	}

	var weighted, total float64
	for _, name := range AspectNames {
		weight, ok := weights[name]
		if !ok {
			continue
		}
		aspect, _ := aspects.Aspect(name)
		weighted += aspect.Score * weight
		total += weight
	}

	if total <= 0 {
		return 0, ConfigError{Msg: "total weight must be positive"}
	}

	return weighted / total, nil
}
