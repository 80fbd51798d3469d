package bootstrap

import (
	"database/sql"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	httpapi "github.com/buildledger/buildledger-backend/internal/api/http"
	apimw "github.com/buildledger/buildledger-backend/internal/api/middleware"
	"github.com/buildledger/buildledger-backend/internal/auth"
	authhttp "github.com/buildledger/buildledger-backend/internal/auth/http"
	authmw "github.com/buildledger/buildledger-backend/internal/auth/middleware"
	"github.com/buildledger/buildledger-backend/internal/auth/repository"
	"github.com/buildledger/buildledger-backend/internal/budgets"
	"github.com/buildledger/buildledger-backend/internal/changeorders"
	"github.com/buildledger/buildledger-backend/internal/clients"
	"github.com/buildledger/buildledger-backend/internal/companies"
	"github.com/buildledger/buildledger-backend/internal/events"
	"github.com/buildledger/buildledger-backend/internal/finance"
	"github.com/buildledger/buildledger-backend/internal/log"
	"github.com/buildledger/buildledger-backend/internal/projects"
	"github.com/buildledger/buildledger-backend/internal/projects/wizard"
	"github.com/buildledger/buildledger-backend/internal/reports"
	"github.com/buildledger/buildledger-backend/internal/storage/postgres"
	"github.com/buildledger/buildledger-backend/internal/subcontractors"
	"github.com/buildledger/buildledger-backend/internal/transactions"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	CORSOrigins    []string
	RequestsPerMin int
	WizardTTL      time.Duration
	DB             *pgxpool.Pool
	SQLDB          *sql.DB // secondary database/sql connection for reports and audit
	Redis          *redis.Client
	AuthClient     *fbauth.Client   // nil means dev auth
	Reports        *reports.Service // nil disables the reports routes
	Logger         *log.Logger
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(apimw.RequestID(dep.Logger))
	r.Use(apimw.Metrics())
	r.Use(apimw.RateLimit(dep.RequestsPerMin))

	corsCfg := cors.DefaultConfig()
	if len(dep.CORSOrigins) > 0 {
		corsCfg.AllowOrigins = dep.CORSOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", "X-Request-Id")
	r.Use(cors.New(corsCfg))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB, dep.Redis)
	healthHandler.RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")

	if dep.AuthClient != nil {
		api.Use(authmw.FirebaseAuthMiddleware(dep.AuthClient))
	} else {
		api.Use(authmw.DevAuthMiddleware())
	}

	profileRepo := repository.NewProfileRepo(dep.DB)
	api.Use(auth.WithProfile(profileRepo))

	authhttp.Register(api.Group("/profile"), profileRepo)

	companyRepo := companies.NewRepo(dep.DB)
	companies.Register(api.Group("/companies"), companyRepo, profileRepo)

	// Everything below needs a company on the caller's profile.
	scoped := api.Group("")
	scoped.Use(auth.RequireCompany())

	clientRepo := clients.NewRepo(dep.DB)
	projectRepo := projects.NewRepo(dep.DB)
	budgetRepo := budgets.NewRepo(dep.DB)
	transactionRepo := transactions.NewRepo(dep.DB)
	subcontractorRepo := subcontractors.NewRepo(dep.DB)
	changeOrderRepo := changeorders.NewRepo(dep.DB)
	publisher := events.NewPublisher(dep.Redis, dep.Logger)

	var auditStore *postgres.AuditStore
	if dep.SQLDB != nil {
		auditStore = postgres.NewAuditStore(dep.SQLDB)
	}

	clients.Register(scoped.Group("/clients"), clientRepo)
	subcontractors.Register(scoped.Group("/subcontractors"), subcontractorRepo)

	projectsGroup := scoped.Group("/projects")
	projects.Register(projectsGroup, projectRepo, publisher, auditStore, dep.Logger)
	budgets.RegisterProjectSubroutes(projectsGroup, budgetRepo, projectRepo)

	financeService := finance.NewService(budgetRepo, transactionRepo, dep.Logger)
	finance.RegisterProjectSubroutes(projectsGroup, financeService, projectRepo)

	txHandler := transactions.RegisterProjectSubroutes(projectsGroup, transactionRepo, projectRepo, subcontractorRepo, publisher, auditStore, dep.Logger)
	transactions.Register(scoped.Group("/transactions"), txHandler)

	coHandler := changeorders.RegisterProjectSubroutes(projectsGroup, changeOrderRepo, budgetRepo, projectRepo, publisher)
	changeorders.Register(scoped.Group("/change-orders"), coHandler)

	if dep.Reports != nil {
		reports.RegisterProjectSubroutes(projectsGroup, dep.Reports, projectRepo)
	}

	wizardStore := wizard.NewStore(dep.Redis, dep.WizardTTL)
	finalizer := wizard.NewFinalizer(clientRepo, projectRepo, budgetRepo, publisher, auditStore, dep.Logger)
	wizard.Register(scoped.Group("/wizard"), wizardStore, finalizer)

	return r
}
