package meter

import "github.com/beplab/examgen"

// NoopMeter is a meter that does nothing.
type NoopMeter struct{}

var _ examgen.Meter = (*NoopMeter)(nil)

func (m *NoopMeter) OnAdmit(examgen.AdmitEvent)       {}
func (m *NoopMeter) OnReject(examgen.RejectEvent)     {}
func (m *NoopMeter) OnGenerate(examgen.GenerateEvent) {}
