package main

import (
	"github.com/pratik-71/planme-backend/internal/app"
	"github.com/pratik-71/planme-backend/internal/config"
)

func main() {
	cfg := config.GetConfig()

	app.Run(cfg)
}
