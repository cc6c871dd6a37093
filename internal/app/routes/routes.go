package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/emre/teamforge/internal/app/controllers"
	"github.com/emre/teamforge/internal/middleware"
	"github.com/emre/teamforge/internal/pkg/realtime"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	userController *controllers.UserController,
	teamController *controllers.TeamController,
	chatController *controllers.ChatController,
	searchController *controllers.SearchController,
	skillController *controllers.SkillController,
	wsHandler *realtime.Handler,
	authMiddleware *middleware.AuthMiddleware,
) {
	// Operational endpoints outside the API version group
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API version group
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/refresh", authController.RefreshToken)
		auth.POST("/logout", authController.Logout)
		auth.GET("/verify-email", authController.VerifyEmail)
		auth.POST("/resend-verification", authController.ResendVerification)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	// Own profile stays reachable before email verification so the user can
	// see their pending state
	authenticated.GET("/users/me", userController.GetMyProfile)
	authenticated.POST("/auth/logout-all", authController.LogoutAll)

	// Everything else requires a verified email
	verified := authenticated.Group("")
	verified.Use(authMiddleware.EmailVerificationRequired())
	{
		// Real-time event feed
		verified.GET("/ws", wsHandler.HandleConnection)

		users := verified.Group("/users")
		{
			users.PUT("/me", userController.UpdateMyProfile)
			users.PUT("/me/avatar", userController.UpdateMyAvatar)
			users.GET("/teamless", userController.ListTeamless)
			users.GET("/:id", userController.GetUser)
		}

		teams := verified.Group("/teams")
		{
			teams.GET("", teamController.ListTeams)
			teams.POST("", teamController.CreateTeam)
			teams.GET("/:id", teamController.GetTeam)
			teams.PUT("/:id", teamController.UpdateTeam)
			teams.DELETE("/:id", teamController.DeleteTeam)

			teams.GET("/:id/requests", teamController.ListJoinRequests)
			teams.POST("/:id/requests", teamController.RequestToJoin)
			teams.POST("/:id/invitations", teamController.InviteToTeam)

			teams.DELETE("/:id/members/me", teamController.LeaveTeam)
			teams.DELETE("/:id/members/:userId", teamController.RemoveMember)
		}

		requests := verified.Group("/requests")
		{
			requests.POST("/:id", teamController.ResolveJoinRequest)
		}

		invitations := verified.Group("/invitations")
		{
			invitations.GET("", teamController.ListMyInvitations)
			invitations.POST("/:id", teamController.ResolveInvitation)
		}

		chat := verified.Group("/chat")
		{
			chat.GET("/community/messages", chatController.ListCommunityMessages)
			chat.POST("/community/messages", chatController.SendCommunityMessage)
			chat.GET("/teams/:id/messages", chatController.ListTeamMessages)
			chat.POST("/teams/:id/messages", chatController.SendTeamMessage)
			chat.DELETE("/messages/:id", chatController.DeleteMessage)
			chat.POST("/messages/:id/read", chatController.MarkMessageRead)
		}

		skills := verified.Group("/skills")
		{
			skills.GET("", skillController.ListSkills)
			skills.POST("", skillController.AddSkill)
		}

		search := verified.Group("/search")
		{
			search.POST("/candidates", searchController.FindCandidates)
		}
	}
}
