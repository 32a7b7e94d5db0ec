package logging

import (
	"log"
	"os"
)

var (
	infoLogger  *log.Logger
	errorLogger *log.Logger
)

// Init wires the package loggers to stdout/stderr. Before Init both levels
// are silent, which keeps test output quiet.
func Init() {
	infoLogger = log.New(os.Stdout, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile)
	errorLogger = log.New(os.Stderr, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
}

func Info(v ...any) {
	if infoLogger != nil {
		infoLogger.Println(v...)
	}
}

func Error(v ...any) {
	if errorLogger != nil {
		errorLogger.Println(v...)
	}
}
