package core

// Logger is the logging contract used across the app.
// args may hold errors, maps of extra data or a student id (see logsvc.Person).
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
