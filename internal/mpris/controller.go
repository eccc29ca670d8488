package mpris

import "github.com/llehouerou/sdjuke/internal/player"

// Controller runs requests on the player loop and exposes its last state.
// Both methods are called from D-Bus goroutines.
type Controller interface {
	// Do runs fn on the loop and waits for it to finish.
	Do(fn func(player.Interface)) error
	// Status returns the latest player snapshot.
	Status() player.Status
}
