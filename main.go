package main

import (
	"flag"
	"log"
	"stibap_portal/internal/app"
	"stibap_portal/internal/config"
	"stibap_portal/pkg/logger"
)

func main() {
	// 命令行参数
	configDir := flag.String("config", "configs", "配置文件所在目录")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg, *configDir)
	defer logger.L().Sync()

	application.Run()
}
