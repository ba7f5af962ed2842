package main

import (
	"flag"
	"os"

	"github.com/joho/godotenv"

	"github.com/memoryfriend/memory-friend/server/friendservice"
	"github.com/memoryfriend/memory-friend/server/internal/logger"
)

func main() {
	// Optional build-target flag override (local | cloud-dev | cloud)
	buildTarget := flag.String("build-target", "", "Override BUILD_TARGET (local, cloud-dev, cloud)")
	flag.Parse()

	log := logger.New("memory-friend")

	// A local .env is optional; environment variables win.
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded .env file")
	}

	if *buildTarget != "" {
		if err := os.Setenv("MEMORY_FRIEND_BUILD_TARGET", *buildTarget); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply build-target override")
		}
	}

	if err := friendservice.Run(); err != nil {
		log.Fatal().Err(err).Msg("service exited with error")
	}
}
