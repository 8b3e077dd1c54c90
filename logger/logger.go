package logger

import (
	"encoding/json"
	"log"
	"os"
	"time"
)

type entry struct {
	Time   string         `json:"time"`
	Level  string         `json:"level"`
	Msg    string         `json:"msg"`
	Fields map[string]any `json:"fields,omitempty"`
}

func Init() {
	log.SetOutput(os.Stdout)
	log.SetFlags(0)
	Info("logger initialized", nil)
}

func Info(msg string, fields map[string]any) {
	write("INFO", msg, fields)
}

func Error(msg string, fields map[string]any) {
	write("ERROR", msg, fields)
}

func Fatal(msg string, fields map[string]any) {
	write("FATAL", msg, fields)
	os.Exit(1)
}

func write(level, msg string, fields map[string]any) {
	for k, v := range fields {
		// error values marshal to {} otherwise
		if err, ok := v.(error); ok {
			fields[k] = err.Error()
		}
	}
	b, err := json.Marshal(entry{Time: time.Now().UTC().Format(time.RFC3339), Level: level, Msg: msg, Fields: fields})
	if err != nil {
		log.Printf(`{"level":"ERROR","msg":"logger: marshal failed: %v"}`, err)
		return
	}
	log.Println(string(b))
}
