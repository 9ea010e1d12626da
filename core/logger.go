package core

// Logger is the logging contract used across services and apps.
// Implementations may fan out to an error-reporting backend; args may carry
// an error, structured data or a user for the backend to attach.
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
