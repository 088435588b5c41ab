package router

import (
	"github.com/nexshop/marketplace/internal/application"
	"github.com/nexshop/marketplace/internal/container"
	handlers "github.com/nexshop/marketplace/internal/interface/http"
	"github.com/nexshop/marketplace/internal/router/modules"
)

// buildService composes the server-side operations service: no remote
// gateway (this process is the authority), with the optional infra
// hanging off the singletons the container holds.
func buildService() *application.Service {
	cfg := container.GetConfig()
	svc := application.NewService(container.GetStore(), nil, container.GetLogger())
	svc.Pub = container.GetRabbitPub()
	svc.MailSendEnabled = cfg.MailSendEnabled
	svc.VerifyEmailURL = cfg.VerifyEmailURL
	svc.ES = container.GetES()
	svc.ESProductsIndex = cfg.ESProductsIndex
	svc.GCS = container.GetGCS()
	svc.GCSBucket = cfg.GCSBucket
	return svc
}

// InitModules wires all feature modules into the registry. Called once
// during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	svc := buildService()
	container.SetOps(svc)

	catalog := handlers.NewCatalogHandler(svc, logger)
	auth := handlers.NewAuthHandler(svc, container.GetJWT(), container.GetRedis(), logger, cfg.CookieDomain, cfg.CookieSecure)
	cart := handlers.NewCartHandler(svc, logger)
	orders := handlers.NewOrderHandler(svc, logger)
	reviews := handlers.NewReviewHandler(svc, logger)

	r.Add(modules.NewCatalogModule(catalog))
	r.Add(modules.NewAuthModule(auth, container.GetJWT()))
	r.Add(modules.NewCartModule(cart))
	r.Add(modules.NewOrderModule(orders))
	r.Add(modules.NewReviewModule(reviews))
}
