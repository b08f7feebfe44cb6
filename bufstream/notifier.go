package bufstream

// notifier is the counting/binary semaphore §5 asks for: signal() posts
// without blocking (over-posting collapses into a single pending wakeup,
// which is fine because every waiter re-checks its own predicate), wait()
// blocks until a post arrives. A buffered channel of capacity one is the
// idiomatic Go stand-in for the wait()/signal() semaphore contract described
// in the spec.
type notifier struct {
	ch chan struct{}
}

func newNotifier() *notifier {
	return &notifier{ch: make(chan struct{}, 1)}
}

// signal wakes one waiter. It never blocks.
func (n *notifier) signal() {
	select {
	case n.ch <- struct{}{}:
	default:
	}
}

// wait blocks until signal is called, or done is closed. It reports whether
// it woke because of a signal (true) or because done closed (false).
func (n *notifier) wait(done <-chan struct{}) bool {
	select {
	case <-n.ch:
		return true
	case <-done:
		return false
	}
}

// await blocks until signal is called. Used by waiters whose only way to
// observe termination is a signal posted specifically for that purpose
// (every shutdown path in this package posts both notifiers explicitly), so
// no separate cancellation channel is needed.
func (n *notifier) await() {
	<-n.ch
}
