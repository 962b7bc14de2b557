package internal

import (
	"net/http"
	"widt/internal/controllers"
	"widt/internal/providers"
)

func InitRoutes(inboundController *controllers.InboundController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Post("/inbound", http.HandlerFunc(inboundController.Receive))
	return routers
}
