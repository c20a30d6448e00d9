package main

import (
	"fmt"
	"os"

	"github.com/nurpe/salesops-contracts/internal/auth"
	"github.com/nurpe/salesops-contracts/internal/config"
	"github.com/nurpe/salesops-contracts/internal/db"
	"github.com/nurpe/salesops-contracts/internal/excel"
	httphandler "github.com/nurpe/salesops-contracts/internal/http"
	"github.com/nurpe/salesops-contracts/internal/http/middleware"
	"github.com/nurpe/salesops-contracts/internal/logger"
	"github.com/nurpe/salesops-contracts/internal/pdf"
	"github.com/nurpe/salesops-contracts/internal/repository"
	"github.com/nurpe/salesops-contracts/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	isolation, err := config.ParseIsolation(cfg.DB.TxIsolation)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid transaction isolation")
	}
	transactor := repository.NewTransactor(database, isolation)

	contractRepo := repository.NewContractRepository(database)
	clauseRepo := repository.NewClauseRepository(database)
	couponRepo := repository.NewCouponRepository(database)
	userRepo := repository.NewUserRepository(database)
	reportRepo := repository.NewReportRepository(database)

	pdfGenerator, err := pdf.NewGenerator(cfg.Contracts.PDFFontPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init pdf generator")
	}
	excelGenerator := excel.NewGenerator()

	contractService := service.NewContractService(transactor, contractRepo, clauseRepo, couponRepo, userRepo, pdfGenerator, cfg, log)
	clauseService := service.NewClauseService(clauseRepo)
	reportService := service.NewReportService(reportRepo, userRepo, excelGenerator)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(contractService, clauseService, reportService, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment, log, cfg.HTTP.CORSAllowedOrigins)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting contracts service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
