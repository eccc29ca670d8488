//go:build !linux

package notify

// newNotifier returns a no-op notifier on non-Linux platforms.
func newNotifier() (notifier, error) {
	return stubNotifier{}, nil
}
