package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"amazonpay/internal/config"
	"amazonpay/internal/mws"
	"amazonpay/internal/payment"
	"amazonpay/internal/pkg/httpclient"
	"amazonpay/internal/pkg/logging"
	"amazonpay/internal/pkg/metrics"
)

// app holds what every command needs: configuration, logger and metrics.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(logging.Config{
		Level:    cfg.Log.Level,
		FilePath: cfg.Log.File,
		Dev:      cfg.Server.Env == "development",
	})
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &app{
		cfg:      cfg,
		logger:   logger,
		registry: reg,
		metrics:  metrics.New(reg),
	}, nil
}

func (a *app) httpClient() *httpclient.Client {
	p := a.cfg.Proxy
	return httpclient.New().WithProxy(httpclient.Proxy{
		Addr: p.Addr,
		Port: p.Port,
		User: p.User,
		Pass: p.Pass,
	})
}

// mwsClient validates the configuration and builds a signed MWS client.
func (a *app) mwsClient() (*mws.Client, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}
	ap := a.cfg.AmazonPay
	return mws.NewClient(mws.Config{
		MerchantID:         ap.MerchantID,
		AccessKey:          ap.AccessKey,
		SecretKey:          ap.SecretKey,
		Region:             ap.Region,
		Sandbox:            ap.Sandbox,
		CurrencyCode:       ap.CurrencyCode,
		PlatformID:         ap.PlatformID,
		MWSAuthToken:       ap.MWSAuthToken,
		DisableThrottle:    ap.DisableThrottle,
		ApplicationName:    ap.ApplicationName,
		ApplicationVersion: ap.ApplicationVersion,
		LogEnabled:         ap.LogEnabled,
		Logger:             a.logger,
		Metrics:            a.metrics,
		HTTPClient:         a.httpClient(),
	})
}

func (a *app) paymentClient() (*payment.Client, error) {
	c, err := a.mwsClient()
	if err != nil {
		return nil, err
	}
	return payment.New(c), nil
}

func (a *app) close() {
	_ = a.logger.Sync()
}
