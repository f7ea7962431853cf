package core

// Logger is any service that can log messages.
// expected args: error, map[string]interface{}, ...
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Person identifies whoever triggered a logged event, e.g. the respondent of a failed submission.
type Person struct {
	ID    string
	Name  string
	Email string
}
