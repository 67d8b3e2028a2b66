package routes

import (
	"freelance-marketplace/internal/api/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterJobRoutes registers all routes related to jobs, their proposals and escrow.
// It applies the provided authentication middleware to all job routes.
func RegisterJobRoutes(
	rg *gin.RouterGroup,
	jobHandler handlers.JobHandlerInterface,
	proposalHandler handlers.ProposalHandlerInterface,
	escrowHandler handlers.EscrowHandlerInterface,
	authMiddleware gin.HandlerFunc,
) {
	jobs := rg.Group("/jobs")
	jobs.Use(authMiddleware)
	{
		jobs.GET("", jobHandler.ListJobs)
		jobs.POST("", jobHandler.CreateJob)
		jobs.GET("/my", jobHandler.ListMyJobs) // Posted by or hired on
		jobs.GET("/:id", jobHandler.GetJobByID)
		jobs.PUT("/:id", jobHandler.EditJob)
		jobs.DELETE("/:id", jobHandler.DeleteJob) // Admin only, enforced by the service
		jobs.POST("/:id/repost", jobHandler.RepostJob)

		jobs.GET("/:id/proposals", proposalHandler.ListProposals)
		jobs.POST("/:id/proposals", proposalHandler.SubmitProposal)
		jobs.PUT("/:id/accept/:proposalId", proposalHandler.AcceptProposal)
		jobs.PUT("/:id/decline/:proposalId", proposalHandler.DeclineProposal)

		jobs.GET("/:id/quote", escrowHandler.Quote)
		jobs.POST("/:id/fund", escrowHandler.FundEscrow)
		jobs.POST("/:id/submit", escrowHandler.SubmitWork)
		jobs.PUT("/:id/approve", escrowHandler.ApproveWork)
	}

	proposals := rg.Group("/proposals")
	proposals.Use(authMiddleware)
	{
		proposals.PUT("/:id/withdraw", proposalHandler.WithdrawProposal)
	}
}
