package usecases

import "time"

// DeleteIfIdle exposes the sweep's per-session check to tests.
func (s *SimulationService) DeleteIfIdle(id string, maxIdle time.Duration) bool {
	return s.deleteIfIdle(id, s.now().Add(-maxIdle).UnixNano())
}
