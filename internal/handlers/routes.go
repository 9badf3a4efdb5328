package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medhire/medhire-backend/internal/identity"
)

// Register wires every route group onto the engine.
func Register(r *gin.Engine, d Deps) {
	auth := &AuthHandler{DB: d.DB, Cfg: d.Cfg}
	jobs := &JobHandler{DB: d.DB, Cfg: d.Cfg, Ledger: d.Ledger, Notify: d.Notify, Tracker: d.Tracker}
	apps := &ApplicationHandler{DB: d.DB, Cfg: d.Cfg, Notify: d.Notify}
	wallet := &CreditsHandler{DB: d.DB, Cfg: d.Cfg, Ledger: d.Ledger}
	notifications := &NotificationHandler{DB: d.DB, Cfg: d.Cfg}
	conversations := &ConversationHandler{DB: d.DB, Cfg: d.Cfg, Hub: d.Hub}
	messages := &MessageHandler{DB: d.DB, Cfg: d.Cfg, Hub: d.Hub}
	saved := &SavedJobHandler{DB: d.DB, Cfg: d.Cfg}
	users := &UserHandler{DB: d.DB, Cfg: d.Cfg}
	institutes := &InstituteHandler{DB: d.DB, Cfg: d.Cfg, Tracker: d.Tracker}
	resumes := &ResumeHandler{DB: d.DB, Cfg: d.Cfg, Store: d.Store}
	verifications := &VerificationHandler{DB: d.DB, Cfg: d.Cfg, Notify: d.Notify, Store: d.Store}
	wsh := &WSHandler{Cfg: d.Cfg, Hub: d.Hub, Notify: d.Notify}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/user/register", auth.RegisterUser)
		authGroup.POST("/user/login", auth.LoginUser)
		authGroup.POST("/institute/register", auth.RegisterInstitute)
		authGroup.POST("/institute/login", auth.LoginInstitute)
	}

	require := identity.RequireAuth(d.Cfg.JWTSecret)
	optional := identity.OptionalAuth(d.Cfg.JWTSecret)

	jobGroup := api.Group("/jobs")
	{
		jobGroup.GET("", jobs.List)
		jobGroup.GET("/search", jobs.Search)
		jobGroup.GET("/recommended", require, jobs.Recommended)
		jobGroup.GET("/institute/:instituteId", jobs.ListByInstitute)
		jobGroup.GET("/:id", optional, jobs.Get)
		jobGroup.POST("", require, jobs.Create)
		jobGroup.PUT("/:id", require, jobs.Update)
		jobGroup.DELETE("/:id", require, jobs.Delete)
		jobGroup.POST("/:id/renew", require, jobs.Renew)
		jobGroup.POST("/:id/toggle-status", require, jobs.ToggleStatus)
	}

	appGroup := api.Group("/applications", require)
	{
		appGroup.POST("", apps.Apply)
		appGroup.GET("/my", apps.ListMine)
		appGroup.GET("/stats", apps.Stats)
		appGroup.GET("/job/:jobId", apps.ListByJob)
		appGroup.GET("/job/:jobId/mine", apps.GetForJob)
		appGroup.GET("/:id", apps.Get)
		appGroup.DELETE("/:id", apps.Delete)

		appGroup.PATCH("/:id/shortlist", apps.Shortlist)
		appGroup.PATCH("/:id/request-next-round", apps.RequestNextRound)
		appGroup.PATCH("/:id/respond-next-round", apps.RespondNextRound)
		appGroup.PATCH("/:id/schedule-interview", apps.ScheduleInterview)
		appGroup.PATCH("/:id/interview-decision", apps.InterviewDecision)
		appGroup.PATCH("/:id/hire", apps.Hire)
		appGroup.PATCH("/:id/reject", apps.Reject)
	}

	creditGroup := api.Group("/credits", require)
	{
		creditGroup.GET("/pricing", wallet.Pricing)
		creditGroup.GET("/my", wallet.MyWallet)
		creditGroup.GET("/history", wallet.History)
		creditGroup.GET("/history/institute/:instituteId", wallet.HistoryByInstitute)
		creditGroup.GET("/history/:id", wallet.HistoryEntry)
		creditGroup.POST("", wallet.CreateWallet)
		creditGroup.GET("", wallet.ListWallets)
		creditGroup.GET("/institute/:instituteId", wallet.GetWalletByInstitute)
		creditGroup.GET("/:id", wallet.GetWallet)
		creditGroup.POST("/:id/top-up", wallet.TopUp)
	}

	notifGroup := api.Group("/notifications", require)
	{
		notifGroup.GET("", notifications.List)
		notifGroup.GET("/unread-count", notifications.UnreadCount)
		notifGroup.PATCH("/read-all", notifications.MarkAllRead)
		notifGroup.PATCH("/:id/read", notifications.MarkRead)
	}

	convGroup := api.Group("/conversations", require)
	{
		convGroup.POST("", conversations.Initiate)
		convGroup.GET("", conversations.List)
		convGroup.GET("/unread-count", conversations.UnreadCount)
		convGroup.GET("/:id", conversations.Get)
		convGroup.POST("/:id/messages", messages.Send)
		convGroup.GET("/:id/messages", messages.List)
		convGroup.PATCH("/:id/read", messages.MarkRead)
	}

	savedGroup := api.Group("/saved-jobs", require)
	{
		savedGroup.GET("", saved.List)
		savedGroup.POST("/:jobId", saved.Save)
		savedGroup.DELETE("/:jobId", saved.Unsave)
	}

	userGroup := api.Group("/users", require)
	{
		userGroup.GET("/me", users.Me)
		userGroup.PUT("/me", users.Update)
		userGroup.POST("/me/educations", users.AddEducation)
		userGroup.DELETE("/me/educations/:id", users.DeleteEducation)
		userGroup.POST("/me/experiences", users.AddExperience)
		userGroup.DELETE("/me/experiences/:id", users.DeleteExperience)
		userGroup.POST("/me/skills", users.AddSkill)
		userGroup.DELETE("/me/skills/:id", users.DeleteSkill)
	}

	instGroup := api.Group("/institutes")
	{
		instGroup.GET("", institutes.List)
		instGroup.GET("/:id", optional, institutes.Get)
		instGroup.PUT("/me", require, institutes.Update)
		instGroup.GET("/me/viewers", require, institutes.Viewers)
	}

	resumeGroup := api.Group("/resumes", require)
	{
		resumeGroup.POST("", resumes.Upload)
		resumeGroup.GET("", resumes.List)
		resumeGroup.DELETE("/:id", resumes.Delete)
	}

	admin := requireAdmin(d.Cfg)
	verifGroup := api.Group("/verifications")
	{
		verifGroup.POST("/user", require, verifications.SubmitUser)
		verifGroup.GET("/user/me", require, verifications.MyUserStatus)
		verifGroup.GET("/user", admin, verifications.ListUser)
		verifGroup.GET("/user/:id", admin, verifications.GetUser)
		verifGroup.PATCH("/user/:id/approve", admin, verifications.ApproveUser)
		verifGroup.PATCH("/user/:id/reject", admin, verifications.RejectUser)
		verifGroup.DELETE("/user/:id", admin, verifications.DeleteUser)

		verifGroup.POST("/institute", require, verifications.SubmitInstitute)
		verifGroup.GET("/institute/me", require, verifications.InstituteStatus)
		verifGroup.GET("/institute", admin, verifications.ListInstitutes)
		verifGroup.PATCH("/institute/:instituteId/approve", admin, verifications.ApproveInstitute)
		verifGroup.PATCH("/institute/:instituteId/reject", admin, verifications.RejectInstitute)
	}

	r.GET("/ws", wsh.Connect)
}
