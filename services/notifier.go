package services

// ChangeNotifier fans mutations out to live subscribers. Delivery is
// fire-and-forget; implementations must never block the producer.
// Satisfied by *realtime.Hub.
type ChangeNotifier interface {
	Publish(roomID string, messageType string, payload interface{})
}

// noopNotifier is used when no hub is wired (tests, one-off tooling).
type noopNotifier struct{}

func (noopNotifier) Publish(string, string, interface{}) {}
