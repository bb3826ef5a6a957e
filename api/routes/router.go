package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/procureflow/procureflow-backend/api/controllers"
	"github.com/procureflow/procureflow-backend/api/middleware"
	"github.com/procureflow/procureflow-backend/internal/delivery"
	"github.com/procureflow/procureflow-backend/internal/negotiation"
	"github.com/procureflow/procureflow-backend/internal/notifications"
	"github.com/procureflow/procureflow-backend/internal/orders"
	"github.com/procureflow/procureflow-backend/internal/requests"
	"github.com/procureflow/procureflow-backend/pkg/config"
	"github.com/procureflow/procureflow-backend/pkg/db"
	"github.com/procureflow/procureflow-backend/pkg/enums"
	"github.com/procureflow/procureflow-backend/pkg/logger"
	"github.com/procureflow/procureflow-backend/pkg/redis"
)

type redisClient interface {
	redis.IdempotencyStore
	Ping(context.Context) error
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisStore redisClient,
	requestsService requests.Service,
	ordersService orders.Service,
	negotiationService negotiation.Service,
	deliveryService delivery.Service,
	notificationsService notifications.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisStore))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisStore, logg))

		requesterOnly := middleware.RequireRole(logg, enums.ActorRoleOwner, enums.ActorRoleStaff)
		approverOnly := middleware.RequireRole(logg, enums.ActorRoleOwner, enums.ActorRoleAdmin)
		vendorOnly := middleware.RequireRole(logg, enums.ActorRoleVendor)

		r.Route("/material-requests", func(r chi.Router) {
			r.With(requesterOnly).Post("/", controllers.CreateMaterialRequest(requestsService, logg))
			r.Get("/", controllers.ListMaterialRequests(requestsService, logg))
			r.Get("/{requestId}", controllers.GetMaterialRequest(requestsService, logg))
			r.With(approverOnly).Post("/{requestId}/approve", controllers.ApproveMaterialRequest(requestsService, logg))
			r.With(approverOnly).Post("/{requestId}/reject", controllers.RejectMaterialRequest(requestsService, logg))
			r.With(vendorOnly).Post("/{requestId}/accept", controllers.AcceptMaterialRequest(ordersService, logg))
		})

		r.Route("/purchase-orders", func(r chi.Router) {
			r.Get("/", controllers.ListPurchaseOrders(ordersService, logg))
			// Registered before {orderId} so chi does not treat it as an id.
			r.With(approverOnly).Get("/delivery-overview", controllers.DeliveryOverview(ordersService, logg))
			r.Route("/{orderId}", func(r chi.Router) {
				r.Get("/", controllers.GetPurchaseOrder(ordersService, logg))
				r.With(requesterOnly).Post("/cancel", controllers.CancelPurchaseOrder(ordersService, logg))

				r.Post("/messages", controllers.PostOrderMessage(negotiationService, logg))
				r.Get("/messages", controllers.ListOrderMessages(negotiationService, logg))
				r.Post("/mark-read", controllers.MarkThreadRead(negotiationService, logg))

				r.With(vendorOnly).Post("/quotation", controllers.SubmitQuotation(negotiationService, logg))
				r.With(requesterOnly).Post("/quotation/{messageId}/accept", controllers.AcceptQuotation(negotiationService, logg))
				r.With(requesterOnly).Post("/quotation/{messageId}/reject", controllers.RejectQuotation(negotiationService, logg))

				r.With(vendorOnly).Post("/delivery-details", controllers.SubmitDeliveryDetails(deliveryService, logg))
				r.With(vendorOnly).Post("/delivery-status", controllers.UpdateDeliveryStatus(deliveryService, logg))
			})
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(notificationsService, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(notificationsService, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(notificationsService, logg))
		})
	})

	return r
}
