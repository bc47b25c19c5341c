package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Horridhunk/carmannagement/internal/audit"
	"github.com/Horridhunk/carmannagement/internal/auth"
	"github.com/Horridhunk/carmannagement/internal/config"
	"github.com/Horridhunk/carmannagement/internal/domain"
	"github.com/Horridhunk/carmannagement/internal/domain/assignment"
	"github.com/Horridhunk/carmannagement/internal/domain/order"
	"github.com/Horridhunk/carmannagement/internal/handlers"
	"github.com/Horridhunk/carmannagement/internal/metrics"
	"github.com/Horridhunk/carmannagement/internal/middleware"
	"github.com/Horridhunk/carmannagement/internal/reporting"
	"github.com/Horridhunk/carmannagement/internal/timezone"
	ucAccount "github.com/Horridhunk/carmannagement/internal/usecase/account"
	ucAppointment "github.com/Horridhunk/carmannagement/internal/usecase/appointment"
	ucOrder "github.com/Horridhunk/carmannagement/internal/usecase/order"
	ucReview "github.com/Horridhunk/carmannagement/internal/usecase/review"
	ucVehicle "github.com/Horridhunk/carmannagement/internal/usecase/vehicle"
)

// Deps are the process-wide singletons the API is built from.
type Deps struct {
	Config      *config.Config
	Repo        domain.Repository
	Engine      *assignment.Engine
	Issuer      *auth.Issuer
	Audit       *audit.Dispatcher
	Metrics     *metrics.Metrics
	Reports     *reporting.Service
	ResetSender ucAccount.ResetSender
	RateLimiter *middleware.RateLimiter
	Clock       timezone.Clock
	Log         *logrus.Logger
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	cfg := d.Config
	biz := cfg.Business
	loc := timezone.Location(cfg.Timezone)
	prices := order.PricesFrom(biz.Prices)
	clock := d.Clock
	if clock == nil {
		clock = timezone.System
	}

	// ======================================================
	// GLOBAL MIDDLEWARE
	// ======================================================
	r.Use(
		middleware.LoggingMiddleware(d.Log.WithField("component", "http")),
		middleware.MetricsMiddleware(d.Metrics),
		middleware.CORSMiddleware(cfg.CORSOrigins),
	)

	// ======================================================
	// USE CASES: ACCOUNTS
	// ======================================================
	registerClientUC := ucAccount.NewRegisterClient(d.Repo, d.Audit)
	createWasherUC := ucAccount.NewCreateWasher(d.Repo, clock, d.Audit)
	loginUC := ucAccount.NewLogin(d.Repo, d.Issuer)
	requestResetUC := ucAccount.NewRequestPasswordReset(
		d.Repo,
		d.ResetSender,
		cfg.PublicBaseURL,
		clock,
		d.Log.WithField("component", "password_reset"),
		d.Metrics,
	)
	resetPasswordUC := ucAccount.NewResetPassword(d.Repo, biz.ResetTokenTTL, clock, d.Audit)
	changePasswordUC := ucAccount.NewChangeWasherPassword(d.Repo, d.Audit)
	manageClientsUC := ucAccount.NewManageClients(d.Repo, d.Engine, d.Audit)

	// ======================================================
	// USE CASES: ORDERS
	// ======================================================
	bookWashUC := ucOrder.NewBookWash(d.Repo, d.Engine, prices, d.Audit)
	cancelOrderUC := ucOrder.NewCancelOrder(d.Repo, d.Engine, d.Audit)
	assignWasherUC := ucOrder.NewAssignWasher(d.Repo, d.Engine, d.Audit)
	startWashUC := ucOrder.NewStartWash(d.Repo, d.Engine, d.Audit)
	completeWashUC := ucOrder.NewCompleteWash(d.Repo, d.Engine, biz.RescanOnCompletion, d.Audit)
	autoAssignUC := ucOrder.NewAutoAssign(d.Repo, d.Engine, d.Audit)
	toggleUC := ucOrder.NewToggleAvailability(d.Repo, d.Engine, d.Audit)
	setStatusUC := ucOrder.NewSetWasherStatus(d.Repo, d.Engine, d.Audit)
	deleteWasherUC := ucOrder.NewDeleteWasher(d.Repo, d.Engine, d.Audit)
	orderQueries := ucOrder.NewQueries(d.Repo, loc, clock)

	// ======================================================
	// USE CASES: APPOINTMENTS
	// ======================================================
	scheduleUC := ucAppointment.NewSchedule(d.Repo, prices, loc, clock, d.Audit)
	cancelAppointmentUC := ucAppointment.NewCancelAppointment(d.Repo, d.Engine, loc, d.Audit)
	rescheduleUC := ucAppointment.NewReschedule(d.Repo, loc, clock, d.Audit)
	createOrderUC := ucAppointment.NewCreateWashOrder(d.Repo, prices, clock, d.Audit)
	listSlotsUC := ucAppointment.NewListAvailableSlots(d.Repo, loc, clock)
	listAppointmentsUC := ucAppointment.NewListAppointments(d.Repo, loc, clock)
	seedSlotsUC := ucAppointment.NewSeedTimeSlots(d.Repo, d.Audit)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(
		registerClientUC,
		createWasherUC,
		loginUC,
		requestResetUC,
		resetPasswordUC,
		cfg.DevMode,
	)
	meHandler := handlers.NewMeHandler(d.Repo)
	vehicleHandler := handlers.NewVehicleHandler(ucVehicle.NewService(d.Repo, d.Audit))
	reviewHandler := handlers.NewReviewHandler(ucReview.NewService(d.Repo, d.Audit))
	clientHandler := handlers.NewClientHandler(manageClientsUC)

	orderHandler := handlers.NewOrderHandler(
		bookWashUC,
		cancelOrderUC,
		assignWasherUC,
		startWashUC,
		completeWashUC,
		autoAssignUC,
		orderQueries,
	)

	washerHandler := handlers.NewWasherHandler(
		createWasherUC,
		manageClientsUC,
		toggleUC,
		setStatusUC,
		deleteWasherUC,
		changePasswordUC,
	)

	appointmentHandler := handlers.NewAppointmentHandler(
		scheduleUC,
		cancelAppointmentUC,
		rescheduleUC,
		createOrderUC,
		listSlotsUC,
		listAppointmentsUC,
		seedSlotsUC,
		biz.Slots,
		loc,
		clock,
	)

	reportingHandler := handlers.NewReportingHandler(d.Reports)
	auditLogsHandler := handlers.NewAuditLogsHandler(d.Repo)

	// ======================================================
	// OPS
	// ======================================================
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	if d.Reports != nil {
		api.Use(middleware.InvalidateOnWrite(d.Reports.Invalidate))
	}
	{
		// ------------------------------
		// AUTH (rate limited)
		// ------------------------------
		authAPI := api.Group("/auth")
		if d.RateLimiter != nil {
			authAPI.Use(d.RateLimiter.Handler())
		}
		{
			authAPI.POST("/register", authHandler.RegisterClient)
			authAPI.POST("/register/washer", authHandler.RegisterWasher)
			authAPI.POST("/login/:role", authHandler.Login)
			authAPI.POST("/forgot-password", authHandler.ForgotPassword)
			authAPI.POST("/reset-password/:token", authHandler.ResetPassword)
		}

		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(d.Issuer))
		{
			secured.GET("/me", meHandler.GetMe)
			secured.GET("/slots", appointmentHandler.AvailableSlots)
			secured.GET("/orders/:id", orderHandler.Detail)
			secured.GET("/reviews", reviewHandler.List)

			// ------------------------------
			// CLIENT
			// ------------------------------
			client := secured.Group("/")
			client.Use(middleware.RequireRole(auth.RoleClient))
			{
				client.GET("/vehicles", vehicleHandler.List)
				client.POST("/vehicles", vehicleHandler.Add)
				client.DELETE("/vehicles/:id", vehicleHandler.Delete)

				client.POST("/orders", orderHandler.Book)
				client.GET("/orders", orderHandler.ListMine)
				client.PATCH("/orders/:id/cancel", orderHandler.Cancel)
				client.POST("/orders/:id/review", reviewHandler.Add)

				client.POST("/appointments", appointmentHandler.Schedule)
				client.PATCH("/appointments/:id/reschedule", appointmentHandler.Reschedule)
			}

			// ------------------------------
			// CLIENT OR ADMIN
			// ------------------------------
			booking := secured.Group("/")
			booking.Use(middleware.RequireRole(auth.RoleClient, auth.RoleAdmin))
			{
				booking.GET("/appointments", appointmentHandler.List)
				booking.PATCH("/appointments/:id/cancel", appointmentHandler.Cancel)
				booking.POST("/appointments/:id/order", appointmentHandler.CreateOrder)
			}

			// ------------------------------
			// WASHER
			// ------------------------------
			washer := secured.Group("/washer")
			washer.Use(middleware.RequireRole(auth.RoleWasher))
			{
				washer.GET("/orders/current", orderHandler.WasherCurrent)
				washer.GET("/orders/completed", orderHandler.WasherCompleted)
				washer.PATCH("/orders/:id/start", orderHandler.Start)
				washer.PATCH("/orders/:id/complete", orderHandler.Complete)
				washer.PATCH("/availability", washerHandler.ToggleSelf)
				washer.PUT("/password", washerHandler.ChangePassword)
			}

			// ------------------------------
			// ADMIN
			// ------------------------------
			admin := secured.Group("/admin")
			admin.Use(middleware.RequireRole(auth.RoleAdmin))
			{
				admin.GET("/orders", orderHandler.AdminList)
				admin.PATCH("/orders/:id/assign", orderHandler.Assign)
				admin.PATCH("/orders/:id/cancel", orderHandler.Cancel)
				admin.POST("/orders/auto-assign", orderHandler.AutoAssign)

				admin.GET("/washers", washerHandler.List)
				admin.POST("/washers", washerHandler.Add)
				admin.PATCH("/washers/:id/status", washerHandler.SetStatus)
				admin.PATCH("/washers/:id/toggle", washerHandler.Toggle)
				admin.DELETE("/washers/:id", washerHandler.Delete)

				admin.GET("/clients", clientHandler.List)
				admin.DELETE("/clients/:id", clientHandler.Delete)

				admin.POST("/slots/seed", appointmentHandler.SeedSlots)

				admin.GET("/dashboard", reportingHandler.Dashboard)
				admin.GET("/analytics", reportingHandler.Analytics)
				admin.GET("/audit-logs", auditLogsHandler.List)
			}
		}
	}
}
