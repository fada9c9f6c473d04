package main

import (
	stdLog "log"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"

	"github.com/Astemirdum/library-management/notifier/app"
	"github.com/Astemirdum/library-management/notifier/config"
)

func main() {
	if err := godotenv.Load(); err != nil {
		stdLog.Println("load envs from .env ", err)
	}
	cfg := config.NewConfig(config.WithLogLevel(zapcore.InfoLevel))

	if err := app.Run(cfg); err != nil {
		stdLog.Fatal(err)
	}
}
