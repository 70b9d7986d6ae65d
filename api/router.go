package api

import (
	"context"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/scholarchain/scholarchain-backend/app"
	"github.com/scholarchain/scholarchain-backend/eth"
	"github.com/scholarchain/scholarchain-backend/eth/client"
	"github.com/scholarchain/scholarchain-backend/models"
)

// ChainWriter is the on-chain write surface the handlers need; satisfied by
// eth.Syncer.
type ChainWriter interface {
	CreateScholarship(ctx context.Context, params eth.CreateParams) (*models.Scholarship, error)
	DeactivateScholarship(ctx context.Context, contractId int64) (string, error)
	ApproveApplication(ctx context.Context, contractId int64, recipient common.Address) (string, error)
}

// Server holds the handler dependencies. contract may be nil, in which case
// reads are served from the mirror store without live enrichment.
type Server struct {
	chain    ChainWriter
	contract client.ScholarshipManagerContract
	healths  func() []models.ServiceHealth
}

func NewServer(chain ChainWriter, contract client.ScholarshipManagerContract, healths func() []models.ServiceHealth) *Server {
	return &Server{
		chain:    chain,
		contract: contract,
		healths:  healths,
	}
}

// Healthz reports liveness plus the health of every background service.
func (s *Server) Healthz(c *gin.Context) {
	var serviceHealths []models.ServiceHealth
	if s.healths != nil {
		serviceHealths = s.healths()
	}
	healthy := true
	for _, health := range serviceHealths {
		if !health.Healthy {
			healthy = false
		}
	}
	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"healthy":  healthy,
		"services": serviceHealths,
	})
}

// NewRouter builds the gin engine with all routes mounted.
func (s *Server) NewRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(app.Config.API.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = app.Config.API.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	router.GET("/healthz", s.Healthz)

	auth := router.Group("/api/auth")
	{
		auth.POST("/register", s.Register)
		auth.POST("/login", s.Login)
		auth.GET("/me", AuthRequired(), s.Me)
		auth.PUT("/profile", AuthRequired(), s.UpdateProfile)
		auth.PUT("/verify/:id", AuthRequired(), RequireCapability(models.CapVerifyUsers), s.VerifyUser)
		auth.GET("/users", AuthRequired(), RequireCapability(models.CapManageUsers), s.ListUsers)
	}

	scholarships := router.Group("/api/scholarships")
	{
		scholarships.GET("", s.ListScholarships)
		scholarships.GET("/stats", s.ScholarshipStats)
		scholarships.GET("/provider/me", AuthRequired(), RequireCapability(models.CapManageScholarship), s.MyScholarships)
		scholarships.GET("/:id", s.GetScholarship)
		scholarships.POST("", AuthRequired(), RequireCapability(models.CapCreateScholarship), s.CreateScholarship)
		scholarships.PUT("/:id", AuthRequired(), RequireCapability(models.CapManageScholarship), s.UpdateScholarship)
		scholarships.DELETE("/:id", AuthRequired(), RequireCapability(models.CapManageScholarship), s.DeleteScholarship)
	}

	applications := router.Group("/api/applications")
	applications.Use(AuthRequired())
	{
		applications.POST("", RequireCapability(models.CapSubmitApplication), s.SubmitApplication)
		applications.GET("/my", s.MyApplications)
		applications.GET("/scholarship/:id", RequireCapability(models.CapReviewApplications), s.ScholarshipApplications)
		applications.GET("/:id", s.GetApplication)
		applications.PUT("/:id/review", RequireCapability(models.CapReviewApplications), s.ReviewApplication)
		applications.PUT("/:id/withdraw", s.WithdrawApplication)
	}

	return router
}
