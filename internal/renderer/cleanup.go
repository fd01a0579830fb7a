package renderer

import (
	log "github.com/sirupsen/logrus"
)

// cleanupStack destroys resources in the reverse of the order they were
// created. Every successful create call pushes its matching destroy call
// straight away, so a failure halfway through setup unwinds exactly what exists.
type cleanupStack struct {
	names []string
	fns   []func()
}

func (s *cleanupStack) push(name string, fn func()) {
	s.names = append(s.names, name)
	s.fns = append(s.fns, fn)
}

func (s *cleanupStack) len() int {
	return len(s.fns)
}

func (s *cleanupStack) run(logger log.FieldLogger) {
	for i := len(s.fns) - 1; i >= 0; i-- {
		logger.WithField("resource", s.names[i]).Trace("Destroying")
		s.fns[i]()
	}
	s.names = nil
	s.fns = nil
}

// shutdown waits for the device to go idle and only then destroys everything.
// Destruction still happens if the wait fails; the wait error is returned.
func shutdown(quiesce func() error, stack *cleanupStack, logger log.FieldLogger) error {
	var err error
	if quiesce != nil {
		err = quiesce()
	}
	stack.run(logger)
	return err
}
