package rp2

import "log/slog"

// faultLatch logs the first error of a failure streak and the recovery
// that ends it, for operations that run on every refresh.
type faultLatch struct {
	what   string
	failed bool
}

func (l *faultLatch) report(log *slog.Logger, err error) {
	switch {
	case err != nil && !l.failed:
		l.failed = true
		log.Error(l.what+" failed", "err", err)
	case err == nil && l.failed:
		l.failed = false
		log.Info(l.what + " recovered")
	}
}
