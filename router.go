package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/konekta/ouvidoria/pkg/config"
	"github.com/konekta/ouvidoria/pkg/handler"
	"github.com/konekta/ouvidoria/pkg/service"
	"github.com/konekta/ouvidoria/pkg/utils"
)

type Server struct {
	ginEngine  *gin.Engine
	logger     *slog.Logger
	cfg        *config.AppConfig
	dispatcher *service.Dispatcher
	port       int
}

func NewServer(cfg *config.AppConfig, gdb *gorm.DB) (*Server, error) {
	gin.SetMode(gin.ReleaseMode)
	ginEngine := gin.New()
	ginEngine.Use(gin.Recovery())

	server := &Server{
		ginEngine: ginEngine,
		logger:    utils.GetLogger(),
		cfg:       cfg,
	}

	if err := server.SetupRoutes(gdb); err != nil {
		return nil, err
	}

	return server, nil
}

// SetupRoutes wires the services and registers the HTTP surface.
func (s *Server) SetupRoutes(gdb *gorm.DB) error {
	partyService := service.NewPartyService(gdb)
	protocolService := service.NewProtocolService(gdb)

	zapiClient := service.NewZApiClient(
		s.cfg.ZApiBaseURL(),
		s.cfg.ZApiInstanceID(),
		s.cfg.ZApiToken(),
		s.cfg.ZApiClientToken(),
	)
	sheetsService := service.NewSheetsService(
		s.cfg.SheetsCredentialsFile(),
		s.cfg.SheetsSpreadsheetID(),
		s.cfg.SheetsSheetName(),
	)

	chatbotService := service.NewChatbotService(gdb, zapiClient, sheetsService, partyService, protocolService)

	for _, m := range []interface{ AutoMigrate() error }{partyService, protocolService, chatbotService} {
		if err := m.AutoMigrate(); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}

	s.dispatcher = service.NewDispatcher(chatbotService.HandleIncomingMessage)

	webhookHandler := handler.NewWebhookHandler(s.dispatcher, s.logger)

	// Webhook routes
	// /webhook
	webhookGroup := s.ginEngine.Group("/webhook")
	webhookHandler.RegisterRoutes(webhookGroup)

	return nil
}

func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host(), s.cfg.Port())
	srv := &http.Server{Addr: addr, Handler: s.ginEngine}

	// Attempt to listen on port first; if occupied return error immediately
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return err
	}

	// Record the actual port (useful if we ever switch to :0).
	if tcpAddr, ok := ln.Addr().(*net.TCPAddr); ok {
		s.port = tcpAddr.Port
	} else {
		s.port = s.cfg.Port()
	}
	s.logger.Info("Webhook server listening", "addr", addr)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Serve(ln)
	}()

	// Listen for context cancellation for graceful shutdown
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := <-errChan; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains the per-conversation workers after the HTTP server stops.
func (s *Server) Shutdown() {
	if s.dispatcher != nil {
		s.dispatcher.Close()
	}
}
