package main

import (
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"houseprice_service/internal/api"
	"houseprice_service/internal/config"
	"houseprice_service/internal/core"
	"houseprice_service/internal/domain/model"
	"houseprice_service/internal/domain/repository"
)

func main() {
	lg := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	cfg := config.Load()

	creds, err := config.LoadCredentials(cfg.CredentialsPath)
	if err != nil {
		lg.Fatal().Err(err).Msg("loading credentials")
	}

	store, err := repository.NewTransactionStore(creds.DSN())
	if err != nil {
		lg.Fatal().Err(err).Msg("connecting to transaction store")
	}
	defer store.Close()

	pois := repository.NewPOIRepository(cfg.OverpassURL, 90*time.Second, repository.DefaultPOIBoxDegrees)

	service := core.NewPredictionService(
		core.NewSampleSelector(store),
		core.NewPOIFeaturizer(pois, model.DefaultTagSet()),
		core.NewFeatureCompressor(core.DefaultVarianceThreshold),
		lg,
	)

	handler := api.NewHandler(service, lg)
	http.HandleFunc("/api/predict", handler.Predict)

	lg.Info().Str("port", cfg.HTTPPort).Msg("starting server")
	if err := http.ListenAndServe(":"+cfg.HTTPPort, nil); err != nil {
		lg.Fatal().Err(err).Msg("server stopped")
	}
}
