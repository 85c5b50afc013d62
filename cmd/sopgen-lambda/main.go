package main

import (
	"log"
	"strings"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/viper"

	"sopgen/internal/config"
	"sopgen/internal/endpoint"
	"sopgen/internal/logging"
)

func main() {
	v := viper.New()
	v.SetEnvPrefix("SOPGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg, err := config.LoadFrom(v)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	e, err := endpoint.FromConfig(cfg, nil)
	if err != nil {
		log.Fatalf("init endpoint: %v", err)
	}
	logging.Info("lambda", "starting", "provider", cfg.LLM.Type)
	lambda.Start(endpoint.LambdaHandler(e))
}
