package reporter

// CompositeReporter fans out events to multiple reporters in order.
type CompositeReporter []Reporter

// NewCompositeReporter creates a composite reporter, skipping nil entries.
func NewCompositeReporter(reporters ...Reporter) CompositeReporter {
	c := make(CompositeReporter, 0, len(reporters))
	for _, r := range reporters {
		if r != nil {
			c = append(c, r)
		}
	}
	return c
}

func (c CompositeReporter) each(fn func(Reporter)) {
	for _, r := range c {
		fn(r)
	}
}

func (c CompositeReporter) AnalysisStarted(info AnalysisInfo) {
	c.each(func(r Reporter) { r.AnalysisStarted(info) })
}

func (c CompositeReporter) CuePoints(result CueResult) {
	c.each(func(r Reporter) { r.CuePoints(result) })
}

func (c CompositeReporter) Warning(message string) {
	c.each(func(r Reporter) { r.Warning(message) })
}

func (c CompositeReporter) Error(err ReporterError) {
	c.each(func(r Reporter) { r.Error(err) })
}

func (c CompositeReporter) BatchStarted(info BatchStartInfo) {
	c.each(func(r Reporter) { r.BatchStarted(info) })
}

func (c CompositeReporter) BatchProgress(progress BatchProgress) {
	c.each(func(r Reporter) { r.BatchProgress(progress) })
}

func (c CompositeReporter) BatchComplete(summary BatchSummary) {
	c.each(func(r Reporter) { r.BatchComplete(summary) })
}
