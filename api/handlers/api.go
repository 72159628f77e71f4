package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/dnounce/dnounce-api/airtable"
	"github.com/dnounce/dnounce-api/analytics"
	"github.com/dnounce/dnounce-api/api"
	"github.com/dnounce/dnounce-api/api/scheduler"
	"github.com/dnounce/dnounce-api/config"
	"github.com/dnounce/dnounce-api/databases"
	"github.com/dnounce/dnounce-api/lifecycle"
	"github.com/dnounce/dnounce-api/logging"
	"github.com/dnounce/dnounce-api/webhook"
)

// analyticsBuffer is the number of events queued before Track starts dropping.
const analyticsBuffer = 1024

// App stores the router and db connection, so it can be reused
type App struct {
	Router *mux.Router
	Config config.Config

	dbHelper  databases.DatabaseHelper
	client    databases.ClientHelper
	engine    *lifecycle.Engine
	airtable  AirtableClient
	webhook   CaseForwarder
	analytics *analytics.Service
	adminAuth *api.AdminAuth
	scheduler *scheduler.Scheduler
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	r := mux.NewRouter()
	r.Use(api.MetricsMiddleware)

	c := Case{
		DB:         databases.NewCaseDatabase(a.dbHelper),
		Airtable:   a.airtable,
		Webhook:    a.webhook,
		Analytics:  a.analytics,
		Engine:     a.engine,
		Scheduling: a.Config.LifecycleScheduling,
	}
	e := Engagement{
		Case:      c,
		VoteDB:    databases.NewVoteDatabase(a.dbHelper),
		CommentDB: databases.NewCommentDatabase(a.dbHelper),
	}
	s := Signup{
		Airtable:   a.airtable,
		WaitlistDB: databases.NewWaitlistDatabase(a.dbHelper),
		SurveyDB:   databases.NewSurveyDatabase(a.dbHelper),
		Analytics:  a.analytics,
	}
	admin := Admin{
		Airtable:   a.airtable,
		CaseDB:     c.DB,
		WaitlistDB: s.WaitlistDB,
		SurveyDB:   s.SurveyDB,
		Engine:     a.engine,
	}
	ev := Events{Analytics: a.analytics}
	cloudinaryHandler := NewCloudinaryHandler(&a.Config)

	// healthchex
	r.HandleFunc("/health", api.HealthCheckHandler).Methods("GET")
	r.Handle("/metrics", api.MetricsHandler()).Methods("GET")

	// the socket hijacks the connection, so it stays outside the timeout
	r.HandleFunc("/ws/cases/{case_id}/lifecycle", c.LifecycleSocketHandler).Methods("GET")

	apiCreate := r.PathPrefix("/api/v1").Subrouter()
	apiCreate.Use(api.TimeoutMiddleware(api.RequestTimeout))

	apiCreate.HandleFunc("/cases", c.SubmitCaseHandler).Methods("POST")
	apiCreate.HandleFunc("/cases/{case_id}", c.CaseByIDHandler).Methods("GET")
	apiCreate.HandleFunc("/cases/{case_id}/lifecycle", c.CaseLifecycleHandler).Methods("GET")
	apiCreate.HandleFunc("/cases/{case_id}/comments", e.CommentsHandler).Methods("GET")
	apiCreate.HandleFunc("/cases/{case_id}/comments", e.CreateCommentHandler).Methods("POST")
	apiCreate.HandleFunc("/cases/{case_id}/votes", e.VoteTallyHandler).Methods("GET")
	apiCreate.HandleFunc("/cases/{case_id}/votes", e.CastVoteHandler).Methods("POST")
	apiCreate.HandleFunc("/cases/{case_id}/interactions", e.InteractionHandler).Methods("POST")
	apiCreate.HandleFunc("/explore", c.ExploreHandler).Methods("GET")
	apiCreate.HandleFunc("/defendants/{defendant_id}", c.DefendantHandler).Methods("GET")

	apiCreate.HandleFunc("/evidence/signature", cloudinaryHandler.GenerateSignature).Methods("POST")

	apiCreate.HandleFunc("/waitlist", s.WaitlistHandler).Methods("POST")
	apiCreate.HandleFunc("/surveys", s.SurveyHandler).Methods("POST")
	apiCreate.HandleFunc("/analytics/events", ev.TrackEventHandler).Methods("POST")

	apiCreate.HandleFunc("/admin/login", a.adminAuth.Login).Methods("POST")
	apiCreate.Handle("/admin/stats", a.adminAuth.Middleware(http.HandlerFunc(admin.StatsHandler))).Methods("GET")
	apiCreate.Handle("/admin/cases", a.adminAuth.Middleware(http.HandlerFunc(admin.CasesHandler))).Methods("GET")
	apiCreate.Handle("/admin/export", a.adminAuth.Middleware(http.HandlerFunc(admin.ExportHandler))).Methods("GET")

	// swagger docs hosted at "/"
	r.PathPrefix("/").Handler(http.StripPrefix("/", http.FileServer(http.Dir("./docs/"))))
	return r
}

// Initialize is invoked by main to connect with the database, start the
// background workers and create a router
func (a *App) Initialize(ctx context.Context) error {
	tuning, err := config.LoadDemoTuning(a.Config.DemoTuningFile)
	if err != nil {
		return err
	}
	a.engine, err = lifecycle.New(tuning)
	if err != nil {
		return err
	}

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}
	if err := client.Connect(ctx); err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	a.client = client
	a.dbHelper = databases.NewDatabase(&a.Config, client)
	zap.S().Info("dnounce-api has connected to the database")

	if err := databases.NewCaseDatabase(a.dbHelper).EnsureIndexes(ctx); err != nil {
		zap.S().Warnw("failed to ensure case indexes", "error", err)
	}
	if err := databases.NewVoteDatabase(a.dbHelper).EnsureIndexes(ctx); err != nil {
		zap.S().Warnw("failed to ensure vote indexes", "error", err)
	}

	at := airtable.New(&a.Config)
	if !at.Configured() {
		zap.S().Info("airtable not configured, using mongo for signups")
	}
	a.airtable = at
	a.webhook = webhook.New(a.Config.MakeWebhookURL, nil)

	a.analytics = analytics.New(analytics.LogSink{Logger: logging.New(a.Config.Env)}, analyticsBuffer)
	a.analytics.Init()

	a.adminAuth = api.NewAdminAuth(&a.Config)

	if a.Config.LifecycleScheduling {
		a.scheduler = scheduler.NewScheduler(&a.Config,
			databases.NewCaseDatabase(a.dbHelper),
			databases.NewVoteDatabase(a.dbHelper),
			databases.NewSchedulerLockDatabase(a.dbHelper),
			scheduler.NewSendGridMailer(a.Config.SendGridAPIKey, a.Config.EmailFrom),
		)
		if err := a.scheduler.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
	}

	// initialize api router
	a.initializeRoutes()
	return nil
}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

// Shutdown stops the scheduler, drains analytics and disconnects from mongo.
func (a *App) Shutdown(ctx context.Context) error {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	var errs []error
	if a.analytics != nil {
		if err := a.analytics.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("analytics: %w", err))
		}
	}
	if a.client != nil {
		if err := a.client.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("mongo: %w", err))
		}
	}
	return errors.Join(errs...)
}
