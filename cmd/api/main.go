package main

import (
	"log"
	"net/http"

	"whispr/internal/api"
	"whispr/internal/config"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	h := api.NewServer(cfg)
	log.Printf("whispr api listening on %s llm_providers=%q whisper=%s", cfg.APIAddr, cfg.LLMProviders, cfg.WhisperBaseURL)
	if err := http.ListenAndServe(cfg.APIAddr, h.Routes()); err != nil {
		log.Fatal(err)
	}
}
