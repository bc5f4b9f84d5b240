package main

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/finqube/claimflow/client"
	"github.com/finqube/claimflow/config"
	"github.com/finqube/claimflow/handler"
	"github.com/finqube/claimflow/service"
	"github.com/finqube/claimflow/storage"
)

const AppName = "claimflow"
const AppDesc = "Expense-claims service: extracts claim data from receipt documents, runs policy and duplicate checks, and drives the claim submission wizard."

var cli struct {
	ListenAddress     string `env:"LISTEN_ADDRESS" help:"${env} - Address to listen on" default:":8080"`
	ConfigPath        string `env:"CONFIG_PATH" help:"${env} - Path to the category/policy config file" default:"./categories.yml"`
	DBPath            string `env:"DB_PATH" help:"${env} - Path to the claims database" default:"./claimflow.db"`
	TessdataPrefix    string `env:"TESSDATA_PREFIX" help:"${env} - Tesseract trained-data directory" default:"/usr/share/tesseract-ocr/5/tessdata/"`
	OCRAPIURL         string `env:"OCR_API_URL" help:"${env} - Base URL of the hosted OCR API. If none is provided, images go straight to local Tesseract"`
	OpenAIAPIKey      string `env:"OPENAI_API_KEY" help:"${env} - API Key for OpenAI. If none is provided, receipt structuring falls back to heuristics"`
	OpenAIModel       string `env:"OPENAI_MODEL" help:"${env} - OpenAI model used for receipt structuring" default:"gpt-4o-mini"`
	EnablePrometheus  bool   `env:"ENABLE_PROMETHEUS" help:"${env} - Expose Prometheus metrics on /metrics" default:"true"`
	MaxUploadMemoryMB int64  `env:"MAX_UPLOAD_MEMORY_MB" help:"${env} - Multipart memory limit in MB" default:"32"`
}

func main() {
	kong.Parse(&cli,
		kong.Name(AppName),
		kong.Description(AppDesc),
	)
	log.Logger = log.Output(os.Stderr).With().Caller().Logger()

	os.Setenv("TESSDATA_PREFIX", cli.TessdataPrefix)

	cfg := config.InitConfig(cli.ConfigPath)

	store, err := storage.NewBoltStore(cli.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cli.DBPath).Msg("failed to open claims database")
	}
	defer store.Close()

	tesseractClient := client.NewTesseractClient(cli.TessdataPrefix)
	defer tesseractClient.Close()

	var remote service.RemoteOCR
	if cli.OCRAPIURL != "" {
		remote = client.NewOCRAPIClient(cli.OCRAPIURL)
	}
	var llm service.ReceiptStructurer
	if cli.OpenAIAPIKey != "" {
		llm = client.NewLLMClient(cli.OpenAIAPIKey, cli.OpenAIModel)
	}

	pdfProcessor := service.NewPDFProcessor()
	extractionService := service.NewExtractionService(remote, tesseractClient, pdfProcessor, llm, cfg)
	duplicateService := service.NewDuplicateService(store)
	claimService := service.NewClaimService(store, client.NewNotifyClient())
	wizardService := service.NewWizardService(claimService, duplicateService, service.NewDebouncer(service.DebounceDelay))

	extractHandler := handler.NewExtractHandler(extractionService, wizardService)
	claimHandler := handler.NewClaimHandler(claimService, duplicateService)
	policyHandler := handler.NewPolicyHandler(cfg)
	wizardHandler := handler.NewWizardHandler(wizardService)
	settingsHandler := handler.NewSettingsHandler(store)

	router := gin.Default()
	router.MaxMultipartMemory = cli.MaxUploadMemoryMB << 20

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": AppName,
		})
	})
	if cli.EnablePrometheus {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api := router.Group("/api/v1")
	{
		api.POST("/documents/extract", extractHandler.Extract)

		claims := api.Group("/claims")
		{
			claims.POST("/batch", claimHandler.SubmitBatch)
			claims.GET("", claimHandler.List)
			claims.GET("/:number", claimHandler.Get)
			claims.POST("/duplicate-check", claimHandler.DuplicateCheck)
			claims.POST("/policy-check", policyHandler.Check)
		}

		api.GET("/categories", policyHandler.Categories)

		wizard := api.Group("/wizard")
		{
			wizard.POST("", wizardHandler.Start)
			wizard.GET("/:id", wizardHandler.Get)
			wizard.POST("/:id/advance", wizardHandler.Advance)
			wizard.POST("/:id/back", wizardHandler.Back)
			wizard.PATCH("/:id/fields", wizardHandler.EditField)
			wizard.POST("/:id/select", wizardHandler.SelectClaim)
			wizard.POST("/:id/submit", wizardHandler.Submit)
		}

		settings := api.Group("/settings")
		{
			settings.GET("/:section", settingsHandler.Get)
			settings.PUT("/:section", settingsHandler.Put)
		}
	}

	log.Info().Str("address", cli.ListenAddress).Msg("starting " + AppName)
	if err := router.Run(cli.ListenAddress); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
