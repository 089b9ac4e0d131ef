package service

// Notifier delivers session notifications to connected clients
// (implemented by the broker; kept as an interface so services stay
// testable without live connections).
type Notifier interface {
	Notify(targetClass string, record interface{})
}
