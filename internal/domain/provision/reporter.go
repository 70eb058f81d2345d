package provision

// Reporter receives run progress in order, synchronously.
type Reporter interface {
	StepStarted(name string)
	StepFinished(result StepResult)
	RunFinished(report *Report)
}

// NopReporter discards all progress.
type NopReporter struct{}

func (NopReporter) StepStarted(string) {}

func (NopReporter) StepFinished(StepResult) {}

func (NopReporter) RunFinished(*Report) {}

var _ Reporter = NopReporter{}
