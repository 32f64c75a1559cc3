package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// Logger é a interface para logging
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Level define o nível mínimo registrado
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel converte o valor de LOG_LEVEL em um Level. Valores desconhecidos viram LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// SimpleLogger é uma implementação simples de Logger
type SimpleLogger struct {
	level       Level
	infoLogger  *log.Logger
	errorLogger *log.Logger
	debugLogger *log.Logger
	warnLogger  *log.Logger
}

// NewLogger cria uma nova instância de Logger usando LOG_LEVEL do ambiente
func NewLogger() Logger {
	return NewLoggerWithLevel(ParseLevel(os.Getenv("LOG_LEVEL")), os.Stdout, os.Stderr)
}

// NewLoggerWithLevel cria um SimpleLogger escrevendo em out (e erros em errOut)
func NewLoggerWithLevel(level Level, out, errOut io.Writer) *SimpleLogger {
	flags := log.Ldate | log.Ltime | log.Lmsgprefix
	return &SimpleLogger{
		level:       level,
		infoLogger:  log.New(out, "INFO: ", flags),
		errorLogger: log.New(errOut, "ERROR: ", flags),
		debugLogger: log.New(out, "DEBUG: ", flags),
		warnLogger:  log.New(out, "WARN: ", flags),
	}
}

// Info registra uma mensagem de informação
func (l *SimpleLogger) Info(msg string, keysAndValues ...interface{}) {
	if l.level <= LevelInfo {
		l.infoLogger.Print(format(msg, keysAndValues))
	}
}

// Error registra uma mensagem de erro
func (l *SimpleLogger) Error(msg string, keysAndValues ...interface{}) {
	l.errorLogger.Print(format(msg, keysAndValues))
}

// Debug registra uma mensagem de debug
func (l *SimpleLogger) Debug(msg string, keysAndValues ...interface{}) {
	if l.level <= LevelDebug {
		l.debugLogger.Print(format(msg, keysAndValues))
	}
}

// Warn registra uma mensagem de aviso
func (l *SimpleLogger) Warn(msg string, keysAndValues ...interface{}) {
	if l.level <= LevelWarn {
		l.warnLogger.Print(format(msg, keysAndValues))
	}
}

// format monta "msg key=value key2=value2". Uma chave sem valor recebe "<missing>".
func format(msg string, keysAndValues []interface{}) string {
	if len(keysAndValues) == 0 {
		return msg
	}

	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i < len(keysAndValues); i += 2 {
		b.WriteByte(' ')
		b.WriteString(fmt.Sprint(keysAndValues[i]))
		b.WriteByte('=')
		if i+1 < len(keysAndValues) {
			b.WriteString(fmt.Sprintf("%v", keysAndValues[i+1]))
		} else {
			b.WriteString("<missing>")
		}
	}
	return b.String()
}

type nopLogger struct{}

// NewNopLogger retorna um Logger que descarta tudo (útil em testes)
func NewNopLogger() Logger { return nopLogger{} }

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}
