package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"st-blogs/internal/service"
)

// NewRouter configura el router de Gin con middlewares y la tabla de rutas.
func NewRouter(
	logger *zap.Logger,
	authH *AuthHandler,
	blogH *BlogHandler,
	oauthH *OAuthHandler,
	sessionSvc *service.SessionService,
	clientURL string,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y CORS con credenciales para
	// que el navegador mande la cookie de sesión.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{clientURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
	}))

	protect := SessionAuthMiddleware(sessionSvc)

	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/signup", authH.Signup)
	auth.POST("/verify-signup-otp", authH.VerifySignupOTP)
	auth.POST("/login", authH.Login)
	auth.POST("/send-otp", authH.SendOTP)
	auth.POST("/verify-otp", authH.VerifyOTP)
	auth.POST("/forgot-password", authH.ForgotPassword)
	auth.POST("/reset-password/:token", authH.ResetPassword)
	auth.GET("/check", protect, authH.Check)
	auth.GET("/user", protect, authH.GetUser)

	for _, providerName := range []string{"google", "github", "linkedin"} {
		auth.GET("/"+providerName, oauthH.Redirect(providerName))
		auth.GET("/"+providerName+"/callback", oauthH.Callback(providerName))
	}

	blogs := api.Group("/blogs")
	blogs.GET("", protect, blogH.List)
	blogs.GET("/all", blogH.ListAll)
	blogs.GET("/:id", blogH.GetByID)
	blogs.POST("", protect, blogH.Create)
	blogs.PUT("/:id", protect, blogH.Update)
	blogs.DELETE("/:id", protect, blogH.Delete)

	api.POST("/logout", authH.Logout)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
