package handlers

import (
	"storefront/internal/config"
	"storefront/internal/queue"
	"storefront/internal/repos"
	"storefront/internal/services"

	"go.uber.org/zap"
)

type Deps struct {
	Store    repos.DocumentStore
	Menu     *services.MenuService
	Cart     *services.CartService
	Checkout *services.CheckoutService
	Auth     *services.AuthService

	MenuHandler     *MenuHandler
	CartHandler     *CartHandler
	CheckoutHandler *CheckoutHandler
	AdminHandler    *AdminHandler
}

// NewDeps wires the services over store. The menu is not loaded yet.
func NewDeps(store repos.DocumentStore, cfg config.Config, broker queue.Broker, log *zap.SugaredLogger) (*Deps, error) {
	menuRepo := repos.NewMenuRepo(store).WithWriteConcurrency(cfg.Store.WriteConcurrency)
	sessionRepo := repos.NewSessionRepo(store)

	menuSvc := services.NewMenuService(menuRepo, broker, log.Named("menu"))
	cartSvc := services.NewCartService(menuSvc, cfg.Shop.DeliveryFee)
	checkoutSvc := services.NewCheckoutService(cartSvc, menuSvc, menuRepo, cfg.Shop, broker, log.Named("checkout"))
	authSvc, err := services.NewAuthService(sessionRepo, cfg.Admin.Code, cfg.Admin.CodeHash, cfg.Admin.SessionTTL)
	if err != nil {
		return nil, err
	}

	return &Deps{
		Store:    store,
		Menu:     menuSvc,
		Cart:     cartSvc,
		Checkout: checkoutSvc,
		Auth:     authSvc,

		MenuHandler:     &MenuHandler{Menu: menuSvc, Cart: cartSvc, Shop: cfg.Shop},
		CartHandler:     &CartHandler{Cart: cartSvc},
		CheckoutHandler: &CheckoutHandler{Checkout: checkoutSvc},
		AdminHandler:    &AdminHandler{Menu: menuSvc, Cart: cartSvc, Auth: authSvc},
	}, nil
}
