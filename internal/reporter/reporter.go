package reporter

// Reporter defines the interface for progress reporting.
type Reporter interface {
	AnalysisStarted(info AnalysisInfo)
	CuePoints(result CueResult)
	Warning(message string)
	Error(err ReporterError)
	BatchStarted(info BatchStartInfo)
	BatchProgress(progress BatchProgress)
	BatchComplete(summary BatchSummary)
}

// NullReporter is a no-op reporter that discards all updates.
type NullReporter struct{}

func (NullReporter) AnalysisStarted(AnalysisInfo) {}
func (NullReporter) CuePoints(CueResult)          {}
func (NullReporter) Warning(string)               {}
func (NullReporter) Error(ReporterError)          {}
func (NullReporter) BatchStarted(BatchStartInfo)  {}
func (NullReporter) BatchProgress(BatchProgress)  {}
func (NullReporter) BatchComplete(BatchSummary)   {}
