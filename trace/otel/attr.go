package otel

import "go.opentelemetry.io/otel/attribute"

func experimentAttr(name string) attribute.KeyValue {
	return attribute.String("trialrun.experiment", name)
}

func totalTrialsAttr(n int64) attribute.KeyValue {
	return attribute.Int64("trialrun.total_trials", n)
}

func logCadenceAttr(n int64) attribute.KeyValue {
	return attribute.Int64("trialrun.log_cadence", n)
}

func workersAttr(n int) attribute.KeyValue {
	return attribute.Int("trialrun.workers", n)
}

func batchAttr(n int64) attribute.KeyValue {
	return attribute.Int64("trialrun.batch", n)
}

func trialsAttr(n int64) attribute.KeyValue {
	return attribute.Int64("trialrun.trials", n)
}

func successesAttr(n int64) attribute.KeyValue {
	return attribute.Int64("trialrun.successes", n)
}

func probabilityAttr(p float64) attribute.KeyValue {
	return attribute.Float64("trialrun.probability", p)
}

func expectedAttr(p float64) attribute.KeyValue {
	return attribute.Float64("trialrun.expected", p)
}
