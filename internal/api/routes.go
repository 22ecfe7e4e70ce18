package api

import (
	"coachdesk/internal/domain"
	"coachdesk/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	budgetService service.BudgetService,
	clientService service.ClientService,
	paymentService service.PaymentService,
	meetingService service.MeetingService,
	notificationService service.NotificationService,
	snapshotService service.SnapshotService,
) {
	authHandler := NewAuthHandler(authService)
	budgetHandler := NewBudgetHandler(budgetService)
	clientHandler := NewClientHandler(clientService, authService, notificationService)
	paymentHandler := NewPaymentHandler(paymentService)
	meetingHandler := NewMeetingHandler(meetingService)
	notificationHandler := NewNotificationHandler(notificationService, budgetService, clientService)
	snapshotHandler := NewSnapshotHandler(snapshotService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userIDStr, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userIDStr, "role": role})
		})

		// All dashboard routes are coach-only; the client portal surface is
		// separate and read-only.
		coach := protected.Group("")
		coach.Use(RoleMiddleware(domain.RoleCoach))
		{
			budgets := coach.Group("/budgets")
			{
				budgets.POST("", budgetHandler.CreateBudget)
				budgets.GET("", budgetHandler.GetCoachBudgets)
				budgets.GET("/:budgetId", budgetHandler.GetBudget)
				budgets.PUT("/:budgetId", budgetHandler.UpdateBudget)
				budgets.DELETE("/:budgetId", budgetHandler.DeleteBudget)
				budgets.POST("/:budgetId/assignments", budgetHandler.AssignBudget)
				budgets.GET("/:budgetId/link", notificationHandler.GetBudgetLink)
			}

			coach.GET("/assignments", budgetHandler.GetClientAssignments)
			coach.DELETE("/assignments/:assignmentId", budgetHandler.DeleteAssignment)

			coach.GET("/plans", budgetHandler.GetClientPlans)
			coach.POST("/plans/blank", budgetHandler.CreateBlankPlans)

			customers := coach.Group("/customers")
			{
				customers.POST("", clientHandler.CreateCustomer)
				customers.GET("", clientHandler.GetCustomers)
				customers.GET("/:customerId", clientHandler.GetCustomer)
				customers.PUT("/:customerId", clientHandler.UpdateCustomer)
				customers.DELETE("/:customerId", clientHandler.DeleteCustomer)
				customers.POST("/:customerId/portal-credentials", clientHandler.IssuePortalCredentials)
			}

			leads := coach.Group("/leads")
			{
				leads.POST("", clientHandler.CreateLead)
				leads.GET("", clientHandler.GetLeads)
				leads.PUT("/:leadId", clientHandler.UpdateLead)
				leads.DELETE("/:leadId", clientHandler.DeleteLead)
				leads.POST("/:leadId/convert", clientHandler.ConvertLead)
			}

			payments := coach.Group("/payments")
			{
				payments.POST("", paymentHandler.RecordPayment)
				payments.GET("", paymentHandler.GetPayments)
				payments.DELETE("/:paymentId", paymentHandler.DeletePayment)
			}

			meetings := coach.Group("/meetings")
			{
				meetings.POST("", meetingHandler.ScheduleMeeting)
				meetings.GET("", meetingHandler.GetMeetings)
				meetings.PUT("/:meetingId", meetingHandler.UpdateMeeting)
				meetings.DELETE("/:meetingId", meetingHandler.CancelMeeting)
			}

			notifications := coach.Group("/notifications")
			{
				notifications.POST("/budget-assigned", notificationHandler.SendBudgetAssigned)
				notifications.POST("/message", notificationHandler.SendCustomMessage)
			}

			snapshots := coach.Group("/snapshots")
			{
				snapshots.POST("", snapshotHandler.CaptureSnapshot)
				snapshots.GET("", snapshotHandler.GetClientSnapshots)
				snapshots.GET("/:snapshotId/download-url", snapshotHandler.GetSnapshotDownloadURL)
			}
		}
	}
}
