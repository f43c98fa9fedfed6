package handlers

import (
	"github.com/jmoiron/sqlx"

	"coffeeshop/internal/cart"
	"coffeeshop/internal/config"
	"coffeeshop/internal/repos"
	"coffeeshop/internal/services"
)

type Deps struct {
	Store    *cart.Store
	Catalog  *services.CatalogService
	Orders   *services.OrderService
	Delivery *services.DeliveryService

	HomeHandler     *HomeHandler
	ProductHandler  *ProductHandler
	CartHandler     *CartHandler
	CheckoutHandler *CheckoutHandler
	OrderHandler    *OrderHandler
	APIHandler      *APIHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, store *cart.Store) *Deps {
	feed := repos.NewFeedRepo(cfg.CategoriesURL, cfg.ItemsURL, cfg.CatalogTimeout)
	orderRepo := repos.NewOrderRepo(db)

	catalogSvc := services.NewCatalogService(feed, cfg.CatalogTTL)
	orderSvc := services.NewOrderService(orderRepo, store, cfg.DeliveryFee, cfg.Discount)
	deliverySvc := services.NewDeliveryService(orderSvc)

	return &Deps{
		Store:    store,
		Catalog:  catalogSvc,
		Orders:   orderSvc,
		Delivery: deliverySvc,

		HomeHandler:     &HomeHandler{Catalog: catalogSvc},
		ProductHandler:  &ProductHandler{Catalog: catalogSvc},
		CartHandler:     &CartHandler{Cart: store, Catalog: catalogSvc},
		CheckoutHandler: &CheckoutHandler{Cart: store, Orders: orderSvc},
		OrderHandler:    &OrderHandler{Orders: orderSvc, Delivery: deliverySvc},
		APIHandler:      &APIHandler{Cart: store, Catalog: catalogSvc, Orders: orderSvc, Delivery: deliverySvc},
	}
}
